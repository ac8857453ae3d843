package kernel

// mailbox is a fixed ring of pending messages for one endpoint.
type mailbox struct {
	slots [mailboxSlots]Message
	next  uint8
	count uint8
}

func (mb *mailbox) push(msg Message) bool {
	if mb.count >= mailboxSlots {
		return false
	}
	mb.slots[(mb.next+mb.count)%mailboxSlots] = msg
	mb.count++
	return true
}

func (mb *mailbox) pop() (Message, bool) {
	if mb.count == 0 {
		return Message{}, false
	}
	msg := mb.slots[mb.next]
	mb.next = (mb.next + 1) % mailboxSlots
	mb.count--
	return msg, true
}
