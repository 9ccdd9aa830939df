package imap

import (
	"github.com/dhanji/frame/comm"
	"github.com/go-kit/kit/metrics"
)

type metricsService struct {
	service Service
	logins  metrics.Counter
	logouts metrics.Counter
}

// NewMetricsService wraps a provided existing service
// with the provided session counters.
func NewMetricsService(s Service, logins metrics.Counter, logouts metrics.Counter) Service {

	return &metricsService{
		service: s,
		logins:  logins,
		logouts: logouts,
	}
}

func (s *metricsService) Capability(c *comm.Connection, session *Session, req *Request) bool {
	return s.service.Capability(c, session, req)
}

func (s *metricsService) Login(c *comm.Connection, session *Session, req *Request) bool {

	ok := s.service.Login(c, session, req)

	if ok {
		s.logins.Add(1)
	}

	return ok
}

func (s *metricsService) List(c *comm.Connection, session *Session, req *Request) bool {
	return s.service.List(c, session, req)
}

func (s *metricsService) Select(c *comm.Connection, session *Session, req *Request) bool {
	return s.service.Select(c, session, req)
}

func (s *metricsService) Fetch(c *comm.Connection, session *Session, req *Request) bool {
	return s.service.Fetch(c, session, req)
}

func (s *metricsService) Search(c *comm.Connection, session *Session, req *Request) bool {
	return s.service.Search(c, session, req)
}

func (s *metricsService) Logout(c *comm.Connection, session *Session, req *Request) bool {

	ok := s.service.Logout(c, session, req)

	if ok {
		s.logouts.Add(1)
	}

	return ok
}
