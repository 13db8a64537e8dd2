// Package protocol implements the session wire protocol.
//
// The protocol package defines the frame header, message types, result codes
// and the binary bodies exchanged between the client and the IM backend over
// one persistent TCP link.
//
// # Protocol Overview
//
// Every outbound frame carries a process-unique sign (int64). The server
// answers requests with a generic Result frame that echoes the sign, so the
// client can correlate replies without blocking a goroutine per request.
//
// # Message Types
//
// Session Management (0x00xx):
//   - SignIn: Authenticate the link with a session token
//   - SignOut: Explicit logout
//   - Ping: Heartbeat, no reply expected
//
// Business (0x02xx and above):
//   - Opaque to this package, forwarded to the business message queue
//
// System (0x05xx):
//   - Result: Generic acknowledgement (sign, code, msg, extra)
//
// # Header Format
//
// Every frame starts with a 24-byte header:
//   - Magic (4 bytes): Protocol identifier (0x5A54494D = "ZTIM")
//   - Version (2 bytes): Protocol version (0x0100 = v1.0)
//   - Type (2 bytes): Message type
//   - Length (4 bytes): Payload length
//   - Flags (2 bytes): Feature flags (encrypted)
//   - Sign (8 bytes): Correlation sign
//   - Reserved (2 bytes): Reserved for future use
//
// # Result Codes
//
// Code 0 is success. Codes 4 and 9 on a sign-in reply mean the token is
// invalid or expired. Code 1001 means the link was kicked while connected.
// Negative codes are local and never appear on the wire.
//
// # Usage Example
//
//	req := &protocol.SignInRequest{Token: token, Device: "cli"}
//	body, err := req.Encode()
//	frame := protocol.NewFrame(protocol.MsgTypeSignIn, protocol.NextSign(), body)
//	conn.Write(frame.Encode())
//
//	reply, err := protocol.ReadFrame(conn)
//	var result protocol.Result
//	err = result.Decode(reply.Payload)
package protocol
