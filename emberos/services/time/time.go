// Package timesvc answers sleep requests against the kernel timebase.
package timesvc

import (
	"ember/emberos/kernel"
	"ember/emberos/proto"
)

const maxSleepers = 32

type sleeper struct {
	inUse bool
	due   uint64
	id    uint32
	reply kernel.Capability
}

type Service struct {
	ep kernel.Capability

	sleepers [maxSleepers]sleeper
}

func New(ep kernel.Capability) *Service {
	return &Service{ep: ep}
}

func (s *Service) Step(ctx *kernel.Context) {
	now := ctx.NowTick()
	s.wakeReady(ctx, now)

	msg, ok := ctx.TryRecv(s.ep)
	if !ok {
		// Nothing pending; check sleepers again on the next tick.
		ctx.BlockOnTick()
		return
	}
	if msg.Kind != uint16(proto.MsgSleep) {
		return
	}
	if !msg.Cap.Valid() {
		return
	}

	requestID, dt, ok := proto.DecodeSleepPayload(msg.Data[:msg.Len])
	if !ok {
		payload := proto.ErrorPayload(proto.ErrBadMessage, proto.MsgSleep, 0)
		_ = ctx.Send(s.ep, msg.Cap, uint16(proto.MsgError), payload)
		return
	}
	if dt == 0 {
		_ = ctx.Send(s.ep, msg.Cap, uint16(proto.MsgWake), proto.WakePayload(requestID))
		return
	}
	if ok := s.schedule(now+uint64(dt), requestID, msg.Cap); !ok {
		payload := proto.ErrorPayload(proto.ErrOverflow, proto.MsgSleep, requestID)
		_ = ctx.Send(s.ep, msg.Cap, uint16(proto.MsgError), payload)
		return
	}
}

func (s *Service) schedule(due uint64, requestID uint32, reply kernel.Capability) bool {
	for i := range s.sleepers {
		if s.sleepers[i].inUse {
			continue
		}
		s.sleepers[i] = sleeper{inUse: true, due: due, id: requestID, reply: reply}
		return true
	}
	return false
}

func (s *Service) wakeReady(ctx *kernel.Context, now uint64) {
	for i := range s.sleepers {
		sl := &s.sleepers[i]
		if !sl.inUse || sl.due > now {
			continue
		}
		_ = ctx.Send(s.ep, sl.reply, uint16(proto.MsgWake), proto.WakePayload(sl.id))
		*sl = sleeper{}
	}
}
