package protocol

// Protocol constants
const (
	// Magic number for the session protocol ('ZTIM')
	ProtocolMagic = 0x5A54494D

	// Protocol version
	ProtocolVersion = 0x0100 // v1.0

	// Header size
	HeaderSize = 24

	// MaxPayloadSize bounds a single frame payload (4 MiB)
	MaxPayloadSize = 4 << 20

	// MaxFieldLen is the longest string a u16 length prefix can carry
	MaxFieldLen = 0xFFFF
)

// Message types
const (
	// Session Management (0x00xx)
	MsgTypeSignIn  uint16 = 0x0001
	MsgTypeSignOut uint16 = 0x0002
	MsgTypePing    uint16 = 0x0003

	// Business messages (0x02xx and above) are opaque to the session layer
	MsgTypeBusinessMin uint16 = 0x0200

	// System (0x05xx)
	MsgTypeResult uint16 = 0x0501 // Generic acknowledgement carrying sign/code/msg
)

// Flags
const (
	FlagEncrypted uint16 = 0x0001 // Payload is AES/CBC encrypted
)

// Result codes sent by the server
const (
	CodeSuccess      int64 = 0
	CodeTokenInvalid int64 = 4
	CodeTokenExpired int64 = 9
	CodeKicked       int64 = 1001 // Link was taken over while connected
	CodeEmptyResult  int64 = 1002 // Business "nothing to return"
)

// Local result codes, never sent on the wire
const (
	CodeTimeout     int64 = -1
	CodeSendFailed  int64 = -2
	CodeNotSignedIn int64 = -3
	CodeBadReply    int64 = -4
)

// IsTokenInvalid reports whether a sign-in result code means the credential is dead.
func IsTokenInvalid(code int64) bool {
	return code == CodeTokenInvalid || code == CodeTokenExpired
}

// IsBusinessType reports whether msgType is routed to the business queue.
func IsBusinessType(msgType uint16) bool {
	return msgType >= MsgTypeBusinessMin && msgType != MsgTypeResult
}

// TypeName returns a readable name for logging
func TypeName(msgType uint16) string {
	switch msgType {
	case MsgTypeSignIn:
		return "sign_in"
	case MsgTypeSignOut:
		return "sign_out"
	case MsgTypePing:
		return "ping"
	case MsgTypeResult:
		return "result"
	default:
		return "business"
	}
}
