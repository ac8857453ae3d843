package kernel

import (
	"ember/emberos/libk/heap"
	"ember/emberos/libk/vec"
)

const mailboxSlots = 8

// MaxMessageBytes caps the payload copied through a mailbox. Anything
// larger belongs in shared memory with a notification, not in the message
// copy path.
const MaxMessageBytes = 128

// TaskID identifies a registered task. IDs are assigned densely in
// registration order.
type TaskID uint16

// Endpoint indexes the kernel's endpoint table.
type Endpoint uint16

// Rights is the bitset of operations a capability permits on its endpoint.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
)

// Capability is an unforgeable handle to an endpoint: the endpoint index
// plus the rights the holder may exercise. The zero value grants nothing.
// Capabilities travel inside messages, which is how services hand out
// reply routes.
type Capability struct {
	ep     Endpoint
	rights Rights
}

func (c Capability) valid() bool   { return c.rights != 0 }
func (c Capability) canSend() bool { return c.rights&RightSend != 0 }
func (c Capability) canRecv() bool { return c.rights&RightRecv != 0 }

// Valid reports whether the capability grants anything at all.
func (c Capability) Valid() bool { return c.valid() }

// Restrict derives a capability that keeps at most the given rights.
// Stripping every right yields the zero capability.
func (c Capability) Restrict(rights Rights) Capability {
	r := c.rights & rights
	if r == 0 {
		return Capability{}
	}
	return Capability{ep: c.ep, rights: r}
}

// Message is the fixed-size envelope copied through a mailbox. Len counts
// the valid prefix of Data; Cap optionally transfers a capability to the
// receiver.
type Message struct {
	From Endpoint
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
	Cap  Capability
}

// SendResult classifies why a send was accepted or refused.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrInvalidFromCap
	SendErrInvalidToCap
	SendErrFromNoSendRight
	SendErrToNoSendRight
	SendErrNoEndpoint
	SendErrPayloadTooLarge
	SendErrQueueFull
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrInvalidFromCap:
		return "from capability invalid"
	case SendErrInvalidToCap:
		return "to capability invalid"
	case SendErrFromNoSendRight:
		return "from capability lacks send right"
	case SendErrToNoSendRight:
		return "to capability lacks send right"
	case SendErrNoEndpoint:
		return "endpoint does not exist"
	case SendErrPayloadTooLarge:
		return "payload exceeds message size"
	case SendErrQueueFull:
		return "mailbox full"
	default:
		return "unknown"
	}
}

// Task is one cooperative unit: Step runs to completion and returns; there
// is no preemption inside a step.
type Task interface {
	Step(*Context)
}

type endpointState struct {
	q       mailbox
	waiters *vec.RefVec[taskState]
}

type taskState struct {
	id       TaskID
	task     Task
	runnable bool
}

// Kernel is a minimal cooperative scheduler plus IPC router.
//
// All kernel tables live in libk containers fed by the given allocator. The
// tables hold Go interface values, so the allocator must be pointer-aware
// (heap.Runtime); arena allocators are for the data plane, not for here.
//
// The kernel is single-threaded: Step, TickTo, and everything reachable from
// a task must run on one goroutine.
type Kernel struct {
	a heap.Allocator

	endpoints *vec.OwnVec[endpointState]
	tasks     *vec.OwnVec[taskState]

	// tickWaiters and per-endpoint waiters borrow task states owned by
	// the task table.
	tickWaiters *vec.RefVec[taskState]

	rr  int
	now uint64
}

// New creates a kernel instance. It fails only if the allocator cannot back
// the (initially tiny) kernel tables.
func New(a heap.Allocator) (*Kernel, error) {
	endpoints, err := vec.NewOwn[endpointState](a)
	if err != nil {
		return nil, err
	}
	tasks, err := vec.NewOwn[taskState](a)
	if err != nil {
		endpoints.Free()
		return nil, err
	}
	tickWaiters, err := vec.NewRef[taskState](a)
	if err != nil {
		tasks.Free()
		endpoints.Free()
		return nil, err
	}
	return &Kernel{
		a:           a,
		endpoints:   endpoints,
		tasks:       tasks,
		tickWaiters: tickWaiters,
	}, nil
}

// NewEndpoint allocates a new endpoint and returns a capability for it. The
// zero capability is returned when the allocator is exhausted.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	if rights == 0 {
		return Capability{}
	}
	st, err := heap.Make[endpointState](k.a)
	if err != nil {
		return Capability{}
	}
	waiters, err := vec.NewRef[taskState](k.a)
	if err != nil {
		heap.FreeObj(k.a, st)
		return Capability{}
	}
	st.waiters = waiters
	if err := k.endpoints.Push(st); err != nil {
		waiters.Free()
		heap.FreeObj(k.a, st)
		return Capability{}
	}
	return Capability{ep: Endpoint(k.endpoints.Len() - 1), rights: rights}
}

// AddTask registers a task and returns its ID. It reports false when the
// task table cannot grow.
func (k *Kernel) AddTask(t Task) (TaskID, bool) {
	st, err := heap.Make[taskState](k.a)
	if err != nil {
		return 0, false
	}
	st.id = TaskID(k.tasks.Len())
	st.task = t
	st.runnable = true
	if err := k.tasks.Push(st); err != nil {
		heap.FreeObj(k.a, st)
		return 0, false
	}
	return st.id, true
}

// Step runs at most one runnable task step.
func (k *Kernel) Step() {
	n := k.tasks.Len()
	if n == 0 {
		return
	}

	for i := 0; i < n; i++ {
		idx := (k.rr + i) % n
		st, _ := k.tasks.At(idx)
		if st == nil || st.task == nil || !st.runnable {
			continue
		}

		k.rr = (idx + 1) % n
		ctx := k.runTask(st)
		if ctx != nil && ctx.blocked {
			k.park(st, ctx)
		}
		return
	}
}

func (k *Kernel) runTask(st *taskState) (ctx *Context) {
	defer func() {
		if r := recover(); r != nil {
			st.runnable = false
			ctx = nil
			triggerPanic(PanicInfo{TaskID: st.id, Value: r})
		}
	}()
	ctx = &Context{k: k, taskID: st.id}
	st.task.Step(ctx)
	return ctx
}

// park marks the task not runnable and records what wakes it. If the waiter
// set cannot grow, the task stays runnable and degrades to polling.
func (k *Kernel) park(st *taskState, ctx *Context) {
	st.runnable = false

	var err error
	switch {
	case ctx.blockOnTick:
		err = k.tickWaiters.Push(st)
	default:
		ep := k.endpoint(ctx.blockOn)
		if ep == nil {
			st.runnable = true
			return
		}
		err = ep.waiters.Push(st)
	}
	if err != nil {
		st.runnable = true
	}
}

// TickTo advances the kernel timebase and wakes tasks blocked on ticks.
func (k *Kernel) TickTo(seq uint64) {
	if seq > k.now {
		k.now = seq
	}
	for {
		st, ok := k.tickWaiters.Pop()
		if !ok {
			return
		}
		st.runnable = true
	}
}

// Tick advances the timebase by one.
func (k *Kernel) Tick() {
	k.TickTo(k.now + 1)
}

func (k *Kernel) nowTick() uint64 { return k.now }

func (k *Kernel) endpoint(e Endpoint) *endpointState {
	st, ok := k.endpoints.At(int(e))
	if !ok {
		return nil
	}
	return st
}

func (k *Kernel) send(from, to Endpoint, kind uint16, payload []byte, xfer Capability) SendResult {
	ep := k.endpoint(to)
	if ep == nil {
		return SendErrNoEndpoint
	}
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}

	var msg Message
	msg.From = from
	msg.To = to
	msg.Kind = kind
	msg.Len = uint16(len(payload))
	copy(msg.Data[:], payload)
	msg.Cap = xfer

	if !ep.q.push(msg) {
		return SendErrQueueFull
	}

	for {
		st, ok := ep.waiters.Pop()
		if !ok {
			return SendOK
		}
		st.runnable = true
	}
}

func (k *Kernel) recv(e Endpoint) (Message, bool) {
	ep := k.endpoint(e)
	if ep == nil {
		return Message{}, false
	}
	return ep.q.pop()
}
