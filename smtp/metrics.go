package smtp

import (
	"github.com/dhanji/frame/comm"
	"github.com/go-kit/kit/metrics"
)

type metricsService struct {
	service  Service
	accepted metrics.Counter
}

// NewMetricsService wraps a provided existing service
// with the provided counter of accepted transfers.
func NewMetricsService(s Service, accepted metrics.Counter) Service {

	return &metricsService{
		service:  s,
		accepted: accepted,
	}
}

func (s *metricsService) Helo(c *comm.Connection, session *Session, line string) bool {
	return s.service.Helo(c, session, line)
}

func (s *metricsService) MailFrom(c *comm.Connection, session *Session, line string) bool {
	return s.service.MailFrom(c, session, line)
}

func (s *metricsService) RcptTo(c *comm.Connection, session *Session, line string) bool {
	return s.service.RcptTo(c, session, line)
}

func (s *metricsService) Data(c *comm.Connection, session *Session) bool {
	return s.service.Data(c, session)
}

func (s *metricsService) DataLine(c *comm.Connection, session *Session, raw string) bool {

	wasInData := session.InData

	ok := s.service.DataLine(c, session, raw)

	// Leaving data mode on success means the transfer
	// just got accepted and stored.
	if ok && wasInData && !session.InData {
		s.accepted.Add(1)
	}

	return ok
}

func (s *metricsService) Quit(c *comm.Connection, session *Session) bool {
	return s.service.Quit(c, session)
}

func (s *metricsService) Unrecognized(c *comm.Connection, session *Session, line string) bool {
	return s.service.Unrecognized(c, session, line)
}
