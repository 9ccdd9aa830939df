package imap

import (
	"github.com/dhanji/frame/comm"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

type loggingService struct {
	logger  log.Logger
	service Service
}

// NewLoggingService wraps a provided existing
// service with the provided logger.
func NewLoggingService(s Service, logger log.Logger) Service {
	return &loggingService{logger, s}
}

// logCommand emits one structured line per handled command.
func (s *loggingService) logCommand(method string, req *Request, ok bool) {

	logger := log.With(s.logger,
		"method", method,
		"tag", req.Tag,
		"payload", req.Payload,
	)

	if !ok {
		level.Info(logger).Log("msg", "failed to perform operation "+method+" correctly")
	} else {
		level.Debug(logger).Log()
	}
}

// Capability wraps this service's Capability
// method with added logging capabilities.
func (s *loggingService) Capability(c *comm.Connection, session *Session, req *Request) bool {

	ok := s.service.Capability(c, session, req)
	s.logCommand("CAPABILITY", req, ok)

	return ok
}

// Login wraps this service's Login method
// with added logging capabilities.
func (s *loggingService) Login(c *comm.Connection, session *Session, req *Request) bool {

	ok := s.service.Login(c, session, req)
	s.logCommand("LOGIN", req, ok)

	return ok
}

// List wraps this service's List method
// with added logging capabilities.
func (s *loggingService) List(c *comm.Connection, session *Session, req *Request) bool {

	ok := s.service.List(c, session, req)
	s.logCommand("LIST", req, ok)

	return ok
}

// Select wraps this service's Select method
// with added logging capabilities.
func (s *loggingService) Select(c *comm.Connection, session *Session, req *Request) bool {

	ok := s.service.Select(c, session, req)
	s.logCommand("SELECT", req, ok)

	return ok
}

// Fetch wraps this service's Fetch method
// with added logging capabilities.
func (s *loggingService) Fetch(c *comm.Connection, session *Session, req *Request) bool {

	ok := s.service.Fetch(c, session, req)
	s.logCommand("FETCH", req, ok)

	return ok
}

// Search wraps this service's Search method
// with added logging capabilities.
func (s *loggingService) Search(c *comm.Connection, session *Session, req *Request) bool {

	ok := s.service.Search(c, session, req)
	s.logCommand("SEARCH", req, ok)

	return ok
}

// Logout wraps this service's Logout method
// with added logging capabilities.
func (s *loggingService) Logout(c *comm.Connection, session *Session, req *Request) bool {

	ok := s.service.Logout(c, session, req)
	s.logCommand("LOGOUT", req, ok)

	return ok
}
