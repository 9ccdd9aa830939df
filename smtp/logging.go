package smtp

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
func (s *loggingService) logCommand(method string, ok bool) {

	logger := log.With(s.logger, "method", method)

	if !ok {
		level.Info(logger).Log("msg", "failed to perform operation "+method+" correctly")
	} else {
		level.Debug(logger).Log()
	}
}

// Helo wraps this service's Helo method
// with added logging capabilities.
func (s *loggingService) Helo(c *comm.Connection, session *Session, line string) bool {

	ok := s.service.Helo(c, session, line)
	s.logCommand("HELO", ok)

	return ok
}

// MailFrom wraps this service's MailFrom method
// with added logging capabilities.
func (s *loggingService) MailFrom(c *comm.Connection, session *Session, line string) bool {

	ok := s.service.MailFrom(c, session, line)
	s.logCommand("MAIL", ok)

	return ok
}

// RcptTo wraps this service's RcptTo method
// with added logging capabilities.
func (s *loggingService) RcptTo(c *comm.Connection, session *Session, line string) bool {

	ok := s.service.RcptTo(c, session, line)
	s.logCommand("RCPT", ok)

	return ok
}

// Data wraps this service's Data method
// with added logging capabilities.
func (s *loggingService) Data(c *comm.Connection, session *Session) bool {

	ok := s.service.Data(c, session)
	s.logCommand("DATA", ok)

	return ok
}

// DataLine wraps this service's DataLine method. Individual
// message lines are not logged, only a failed transfer is.
func (s *loggingService) DataLine(c *comm.Connection, session *Session, raw string) bool {

	ok := s.service.DataLine(c, session, raw)

	if !ok {
		level.Info(s.logger).Log("msg", "failed to consume data transfer line")
	}

	return ok
}

// Quit wraps this service's Quit method
// with added logging capabilities.
func (s *loggingService) Quit(c *comm.Connection, session *Session) bool {

	ok := s.service.Quit(c, session)
	s.logCommand("QUIT", ok)

	return ok
}

// Unrecognized wraps this service's Unrecognized method
// with added logging capabilities.
func (s *loggingService) Unrecognized(c *comm.Connection, session *Session, line string) bool {

	ok := s.service.Unrecognized(c, session, line)

	logger := log.With(s.logger, "method", "UNRECOGNIZED", "line", line)

	if !ok {
		level.Info(logger).Log("msg", "failed to answer unrecognized command")
	} else {
		level.Debug(logger).Log()
	}

	return ok
}
