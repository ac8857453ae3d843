package kernel

import "testing"

func TestMailboxPopEmpty(t *testing.T) {
	var mb mailbox

	if _, ok := mb.pop(); ok {
		t.Fatal("pop() on empty mailbox reported ok")
	}
}

func TestMailboxFull(t *testing.T) {
	var mb mailbox

	for i := 0; i < mailboxSlots; i++ {
		if ok := mb.push(Message{Kind: uint16(i)}); !ok {
			t.Fatalf("push #%d failed, want success", i)
		}
	}
	if ok := mb.push(Message{}); ok {
		t.Fatal("push on full mailbox succeeded")
	}

	for i := 0; i < mailboxSlots; i++ {
		msg, ok := mb.pop()
		if !ok {
			t.Fatalf("pop #%d failed, want success", i)
		}
		if msg.Kind != uint16(i) {
			t.Fatalf("pop #%d kind = %d, want %d (FIFO order)", i, msg.Kind, i)
		}
	}
}

func TestMailboxWrapAround(t *testing.T) {
	var mb mailbox

	for round := 0; round < 300; round++ {
		if ok := mb.push(Message{Kind: uint16(round)}); !ok {
			t.Fatalf("push round %d failed", round)
		}
		msg, ok := mb.pop()
		if !ok || msg.Kind != uint16(round) {
			t.Fatalf("pop round %d = %d, %v", round, msg.Kind, ok)
		}
	}
}
