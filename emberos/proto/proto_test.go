package proto

import "testing"

func TestErrorPayloadRoundTrip(t *testing.T) {
	p := ErrorPayload(ErrOverflow, MsgSleep, 77)

	code, ref, id, ok := DecodeErrorPayload(p)
	if !ok {
		t.Fatal("decode failed")
	}
	if code != ErrOverflow || ref != MsgSleep || id != 77 {
		t.Fatalf("decoded %s/%d/%d, want overflow/%d/77", code, ref, id, MsgSleep)
	}
}

func TestDecodeErrorPayloadShort(t *testing.T) {
	if _, _, _, ok := DecodeErrorPayload([]byte{1, 2, 3}); ok {
		t.Fatal("short payload decoded ok")
	}
}

func TestSleepPayloadRoundTrip(t *testing.T) {
	id, dt, ok := DecodeSleepPayload(SleepPayload(9, 250))
	if !ok || id != 9 || dt != 250 {
		t.Fatalf("decoded %d/%d/%v, want 9/250/true", id, dt, ok)
	}

	if _, _, ok := DecodeSleepPayload(nil); ok {
		t.Fatal("nil payload decoded ok")
	}
	if _, _, ok := DecodeSleepPayload(make([]byte, 9)); ok {
		t.Fatal("oversized payload decoded ok")
	}
}

func TestWakePayloadRoundTrip(t *testing.T) {
	id, ok := DecodeWakePayload(WakePayload(12345))
	if !ok || id != 12345 {
		t.Fatalf("decoded %d/%v, want 12345/true", id, ok)
	}
	if _, ok := DecodeWakePayload([]byte{1, 2}); ok {
		t.Fatal("short payload decoded ok")
	}
}

func TestErrCodeString(t *testing.T) {
	if got := ErrBadMessage.String(); got != "bad_message" {
		t.Fatalf("String() = %q, want bad_message", got)
	}
	if got := ErrCode(999).String(); got != "invalid" {
		t.Fatalf("String() = %q, want invalid", got)
	}
}
