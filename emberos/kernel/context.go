package kernel

// Context provides task-local access to kernel operations for one step.
//
// Blocking is cooperative: Recv and BlockOnTick mark the task as parked and
// the step must then return; the scheduler re-steps the task once the wake
// condition fires.
type Context struct {
	k      *Kernel
	taskID TaskID

	blocked     bool
	blockOnTick bool
	blockOn     Endpoint
}

// TaskID returns the current task ID.
func (c *Context) TaskID() TaskID { return c.taskID }

// TryRecv reads one message from the capability endpoint without blocking.
func (c *Context) TryRecv(epCap Capability) (Message, bool) {
	if !epCap.valid() || !epCap.canRecv() {
		return Message{}, false
	}
	return c.k.recv(epCap.ep)
}

// Recv reads one message from the capability endpoint. On an empty mailbox
// it parks the task on the endpoint and reports false; the step should
// return and will be re-run when a message arrives.
func (c *Context) Recv(epCap Capability) (Message, bool) {
	if !epCap.valid() || !epCap.canRecv() {
		return Message{}, false
	}
	if msg, ok := c.k.recv(epCap.ep); ok {
		return msg, true
	}
	c.blocked = true
	c.blockOnTick = false
	c.blockOn = epCap.ep
	return Message{}, false
}

// BlockOnTick parks the task until the kernel timebase next advances.
func (c *Context) BlockOnTick() {
	c.blocked = true
	c.blockOnTick = true
}

// NowTick returns the last observed tick value.
func (c *Context) NowTick() uint64 {
	return c.k.nowTick()
}

// Send sends a message to the capability endpoint.
func (c *Context) Send(fromCap, toCap Capability, kind uint16, payload []byte) bool {
	return c.SendCapResult(fromCap, toCap, kind, payload, Capability{}) == SendOK
}

// SendCap sends a message and transfers an optional capability.
func (c *Context) SendCap(fromCap, toCap Capability, kind uint16, payload []byte, xfer Capability) bool {
	return c.SendCapResult(fromCap, toCap, kind, payload, xfer) == SendOK
}

// SendCapResult sends a message and transfers an optional capability,
// reporting the detailed outcome.
func (c *Context) SendCapResult(fromCap, toCap Capability, kind uint16, payload []byte, xfer Capability) SendResult {
	if !fromCap.valid() {
		return SendErrInvalidFromCap
	}
	if !fromCap.canSend() {
		return SendErrFromNoSendRight
	}
	if !toCap.valid() {
		return SendErrInvalidToCap
	}
	if !toCap.canSend() {
		return SendErrToNoSendRight
	}
	return c.k.send(fromCap.ep, toCap.ep, kind, payload, xfer)
}

// SendTo sends a message to the capability endpoint.
//
// The message From field is set to 0 (unknown).
func (c *Context) SendTo(toCap Capability, kind uint16, payload []byte) bool {
	return c.SendToResult(toCap, kind, payload) == SendOK
}

// SendToResult sends a message, reporting the detailed outcome.
//
// The message From field is set to 0 (unknown).
func (c *Context) SendToResult(toCap Capability, kind uint16, payload []byte) SendResult {
	if !toCap.valid() {
		return SendErrInvalidToCap
	}
	if !toCap.canSend() {
		return SendErrToNoSendRight
	}
	return c.k.send(0, toCap.ep, kind, payload, Capability{})
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (c *Context) NewEndpoint(rights Rights) Capability {
	return c.k.NewEndpoint(rights)
}
