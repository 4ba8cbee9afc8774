package client

import "github.com/cockroachdb/errors"

// DefaultClientID is substituted whenever Options.ClientID is empty.
const DefaultClientID = "simba_mqtt"

// Will describes an MQTT last-will-and-testament: the message the broker
// publishes on the client's behalf if the connection drops uncleanly.
// Topic empty iff Payload empty.
type Will struct {
	Topic   []byte
	Payload []byte
	QoS     byte
	Retain  bool
}

func (w *Will) validate() error {
	if w == nil {
		return nil
	}
	if (len(w.Topic) == 0) != (len(w.Payload) == 0) {
		return errors.Wrap(ErrInvalidArgument, "will topic and payload must both be empty or both be set")
	}
	if w.QoS > 2 {
		return errors.Wrap(ErrInvalidArgument, "will QoS must be 0, 1, or 2")
	}
	return nil
}

// Options configures Connect. A nil Options is equivalent to &Options{}:
// clean session, no will, the default client ID, no credentials.
type Options struct {
	ClientID []byte
	Will     *Will
	UserName []byte
	Password []byte
}

func (o *Options) validate() error {
	if o == nil {
		return nil
	}
	return o.Will.validate()
}

func (o *Options) clientID() []byte {
	if o == nil || len(o.ClientID) == 0 {
		return []byte(DefaultClientID)
	}
	return o.ClientID
}

// Message is an application message: the unit Publish sends. Inbound
// PUBLISH packets are not delivered as a Message; PublishFunc receives
// the topic, a payload reader and the payload size instead. The same
// type carries a requested QoS for Subscribe, since a subscription
// request is just a topic filter paired with a desired QoS.
type Message struct {
	Topic   []byte
	Payload []byte
	QoS     byte
}

func (m Message) validateTopic() error {
	if len(m.Topic) == 0 {
		return errors.Wrap(ErrInvalidArgument, "topic must not be empty")
	}
	if m.QoS > 2 {
		return errors.Wrap(ErrInvalidArgument, "QoS must be 0, 1, or 2")
	}
	return nil
}
