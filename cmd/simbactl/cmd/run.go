package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/simonlbn/simba/client"
	"github.com/simonlbn/simba/pkg/logger"
	"github.com/simonlbn/simba/transport"
)

var (
	flagSubTopic   string
	flagSubQoS     uint8
	flagPubTopic   string
	flagPubPayload string
	flagPubQoS     uint8
	flagWillTopic  string
	flagWillPay    string
	flagWillQoS    uint8
	flagWillRetain bool
	flagKeepAlive  time.Duration
	flagDuration   time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to a broker, optionally subscribe and publish, then hold the session open",
	Example: "  simbactl run --broker test.mosquitto.org:1883 --sub telemetry/#\n" +
		"  simbactl run --broker localhost:1883 --pub-topic status --pub-payload up --duration 30s",
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&flagSubTopic, "sub", "", "topic filter to subscribe to")
	f.Uint8Var(&flagSubQoS, "sub-qos", 0, "requested QoS for --sub")
	f.StringVar(&flagPubTopic, "pub-topic", "", "topic to publish once after connecting")
	f.StringVar(&flagPubPayload, "pub-payload", "", "payload for --pub-topic")
	f.Uint8Var(&flagPubQoS, "pub-qos", 0, "QoS for --pub-topic")
	f.StringVar(&flagWillTopic, "will-topic", "", "last-will topic")
	f.StringVar(&flagWillPay, "will-payload", "", "last-will payload")
	f.Uint8Var(&flagWillQoS, "will-qos", 0, "last-will QoS")
	f.BoolVar(&flagWillRetain, "will-retain", false, "mark the last-will message retained")
	f.DurationVar(&flagKeepAlive, "keepalive", 30*time.Second, "PINGREQ interval")
	f.DurationVar(&flagDuration, "duration", 0, "exit after this long (0: run until interrupted)")
	_ = viper.BindPFlags(f)
}

func runRun(cmd *cobra.Command, _ []string) error {
	corrID := uuid.New().String()
	log := logger.NewSlogLogger(logLevel(), newLogWriter())
	log.Info("starting run", "corr_id", corrID, "broker", viper.GetString("broker"))

	password := []byte(viper.GetString("pass"))
	if flagAskPass {
		pw, err := promptPassword()
		if err != nil {
			return err
		}
		password = pw
	}

	conn, err := dial()
	if err != nil {
		return err
	}

	var delivered int
	onPublish := func(_ *client.Client, topic string, payload io.Reader, size uint32) error {
		buf := make([]byte, size)
		if _, err := io.ReadFull(payload, buf); err != nil {
			return err
		}
		delivered++
		fmt.Printf("[%s] %s: %s\n", corrID, topic, buf)
		return nil
	}

	var lastErr error
	onError := func(_ *client.Client, err error) {
		lastErr = err
		log.Error("client error", "corr_id", corrID, "error", err.Error())
	}

	c := client.New(viper.GetString("client-id"), adaptLogger(log), conn, onPublish, onError)
	c.SetMetrics(client.NewMetrics(nil))
	defer func() { _ = c.Close() }()

	// Empty credentials are left nil: EncodeConnect treats a non-nil empty
	// user name or password as an invalid MQTT string.
	opts := &client.Options{
		ClientID: []byte(viper.GetString("client-id")),
	}
	if user := viper.GetString("user"); user != "" {
		opts.UserName = []byte(user)
	}
	if len(password) > 0 {
		opts.Password = password
	}
	if flagWillTopic != "" {
		opts.Will = &client.Will{
			Topic:   []byte(flagWillTopic),
			Payload: []byte(flagWillPay),
			QoS:     flagWillQoS,
			Retain:  flagWillRetain,
		}
	}

	if err := c.Connect(opts); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	log.Info("connected", "corr_id", corrID, "state", c.State())

	if flagSubTopic != "" {
		granted, err := c.Subscribe(client.Message{Topic: []byte(flagSubTopic), QoS: flagSubQoS})
		if err != nil {
			return fmt.Errorf("subscribe %q: %w", flagSubTopic, err)
		}
		log.Info("subscribed", "corr_id", corrID, "topic", flagSubTopic, "granted_qos", granted)
	}

	if flagPubTopic != "" {
		msg := client.Message{Topic: []byte(flagPubTopic), Payload: []byte(flagPubPayload), QoS: flagPubQoS}
		if err := c.Publish(msg); err != nil {
			return fmt.Errorf("publish %q: %w", flagPubTopic, err)
		}
		log.Info("published", "corr_id", corrID, "topic", flagPubTopic)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flagDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagDuration)
		defer cancel()
	}

	// The core never schedules its own PINGREQ: keeping the session alive
	// is the application's job, supervised here alongside shutdown via
	// errgroup the way the teacher pairs a worker goroutine with its
	// cancellation context.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return pingLoop(gctx, c, flagKeepAlive) })
	_ = g.Wait()

	if err := c.Disconnect(); err != nil {
		log.Warn("disconnect", "corr_id", corrID, "error", err.Error())
	}

	fmt.Printf("%s: %d messages delivered, %d bytes read, %d bytes written\n",
		corrID, delivered, conn.BytesRead(), conn.BytesWritten())
	return lastErr
}

func pingLoop(ctx context.Context, c *client.Client, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Ping(); err != nil {
				return err
			}
		}
	}
}

func dial() (*transport.TCP, error) {
	cfg := transport.DefaultTCPConfig()
	if flagTLS {
		tlsCfg := transport.DefaultTLSConfig()
		tlsCfg.CAFile = flagCAFile
		tlsCfg.CertFile = flagCertFile
		tlsCfg.KeyFile = flagKeyFile
		tlsCfg.InsecureSkipVerify = flagInsecure
		cfg.TLS = tlsCfg
	}
	return transport.DialTCP(viper.GetString("broker"), cfg)
}

func promptPassword() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return pw, nil
}

// adaptLogger bridges *logger.SlogLogger (slog.Level aware) to the
// client.Logger interface it already satisfies structurally; named here
// only to document the dependency direction (cmd -> client, never back).
func adaptLogger(l *logger.SlogLogger) client.Logger { return l }
