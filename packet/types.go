package packet

// Fixed packet identifiers. The client never has more than one request of
// a given kind outstanding at once (the single-outstanding-request
// discipline), so each request family uses a constant identifier instead
// of a generated sequence.
const (
	publishPacketID     uint16 = 1
	subscribePacketID   uint16 = 1
	unsubscribePacketID uint16 = 2
)

// ProtocolLevel, written after the protocolName string, identifies
// MQTT 3.1.1 in the CONNECT variable header.
const (
	ProtocolLevel byte = 0x04
)

// KeepAliveSeconds is the keep-alive interval the client advertises in
// CONNECT. The core does not itself schedule PINGREQ: the
// application calls Ping to keep the session alive within this window.
const KeepAliveSeconds uint16 = 300

// Connect flag bits, MQTT 3.1.1 section 3.1.2.3.
const (
	connectFlagUserName     byte = 0x80
	connectFlagPassword     byte = 0x40
	connectFlagWillRetain   byte = 0x20
	connectFlagWillQoS2     byte = 0x10
	connectFlagWillQoS1     byte = 0x08
	connectFlagWill         byte = 0x04
	connectFlagCleanSession byte = 0x02
)

// MaxInboundTopicLen is the default cap on an inbound PUBLISH topic name.
// The teacher's fixed stack-allocated 128-byte topic buffer capped this at
// 127 bytes of room for the name itself; this implementation keeps that
// as the default but takes it as a caller-supplied parameter instead of a
// fixed buffer size.
const MaxInboundTopicLen = 127
