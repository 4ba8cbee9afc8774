// Package cmd implements simbactl's command-line surface: a thin cobra
// driver around package client, following the flag/RunE layout the pack's
// own MQTT tooling (bromq-dev-testmqtt/internal/cmd) uses for its
// conformance and simulation subcommands.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagBroker   string
	flagClientID string
	flagUserName string
	flagPassword string
	flagAskPass  bool
	flagTLS      bool
	flagCAFile   string
	flagCertFile string
	flagKeyFile  string
	flagInsecure bool
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "simbactl",
	Short:         "Drive an MQTT v3.1.1 session against a broker",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagBroker, "broker", "127.0.0.1:1883", "broker address (host:port)")
	pf.StringVar(&flagClientID, "client-id", "", "MQTT client id (default: simba_mqtt)")
	pf.StringVar(&flagUserName, "user", "", "CONNECT username")
	pf.StringVar(&flagPassword, "pass", "", "CONNECT password (prefer -P to avoid shell history)")
	pf.BoolVarP(&flagAskPass, "ask-pass", "P", false, "prompt for the CONNECT password without echoing it")
	pf.BoolVar(&flagTLS, "tls", false, "dial the broker over TLS")
	pf.StringVar(&flagCAFile, "ca-file", "", "PEM CA bundle used to verify the broker (TLS only)")
	pf.StringVar(&flagCertFile, "cert-file", "", "client certificate for mutual TLS")
	pf.StringVar(&flagKeyFile, "key-file", "", "client key for mutual TLS")
	pf.BoolVar(&flagInsecure, "insecure", false, "skip broker certificate verification (TLS only)")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "debug-level logging")

	// The flags read through viper (broker, client-id, user, pass,
	// verbose) can also be set from SIMBACTL_-prefixed environment
	// variables, the same override path the teacher's own services expose
	// for container deployment. No key replacer is set, so hyphens stay in
	// the variable name (SIMBACTL_CLIENT-ID). The TLS flags and --ask-pass
	// are read from their flag variables only.
	viper.SetEnvPrefix("simbactl")
	viper.AutomaticEnv()
	_ = viper.BindPFlags(pf)

	rootCmd.AddCommand(runCmd)
}

// Execute runs the selected subcommand; called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func logLevel() slog.Level {
	if viper.GetBool("verbose") {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func newLogWriter() *os.File { return os.Stderr }
