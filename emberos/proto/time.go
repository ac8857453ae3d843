package proto

import "encoding/binary"

// Sleep/wake payloads. Both are fixed-length little-endian records: a sleep
// request carries the duration in ticks followed by a request ID, and the
// wake echoes that ID so a client can match replies to outstanding requests.
const (
	sleepPayloadLen = 8
	wakePayloadLen  = 4
)

// SleepPayload encodes a MsgSleep request for dt ticks.
func SleepPayload(requestID uint32, dt uint32) []byte {
	b := make([]byte, 0, sleepPayloadLen)
	b = binary.LittleEndian.AppendUint32(b, dt)
	b = binary.LittleEndian.AppendUint32(b, requestID)
	return b
}

// DecodeSleepPayload decodes a MsgSleep payload. ok is false when the
// payload is not exactly the sleep record length.
func DecodeSleepPayload(p []byte) (requestID uint32, dt uint32, ok bool) {
	if len(p) != sleepPayloadLen {
		return 0, 0, false
	}
	dt = binary.LittleEndian.Uint32(p)
	requestID = binary.LittleEndian.Uint32(p[4:])
	return requestID, dt, true
}

// WakePayload encodes the MsgWake reply for a sleep request.
func WakePayload(requestID uint32) []byte {
	b := make([]byte, 0, wakePayloadLen)
	return binary.LittleEndian.AppendUint32(b, requestID)
}

// DecodeWakePayload decodes a MsgWake payload.
func DecodeWakePayload(p []byte) (requestID uint32, ok bool) {
	if len(p) != wakePayloadLen {
		return 0, false
	}
	return binary.LittleEndian.Uint32(p), true
}
