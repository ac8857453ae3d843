// Package logger forwards MsgLogLine traffic to the platform log sink.
package logger

import (
	"ember/emberos/kernel"
	"ember/emberos/proto"
	"ember/hal"
)

// maxLinesPerStep caps the lines drained in one step so a flooding writer
// cannot monopolize the scheduler.
const maxLinesPerStep = 16

type Service struct {
	sink hal.Logger
	ep   kernel.Capability
}

func New(sink hal.Logger, ep kernel.Capability) *Service {
	return &Service{sink: sink, ep: ep}
}

func (s *Service) Step(ctx *kernel.Context) {
	for i := 0; i < maxLinesPerStep; i++ {
		msg, ok := ctx.Recv(s.ep)
		if !ok {
			// Mailbox empty; parked until the next line arrives.
			return
		}
		s.emit(msg)
	}
}

func (s *Service) emit(msg kernel.Message) {
	if s.sink == nil || msg.Kind != uint16(proto.MsgLogLine) {
		return
	}
	s.sink.WriteLineBytes(msg.Data[:msg.Len])
}
