// Package smtp implements the scripted SMTP endpoint of the
// mock mail server: a two-phase command/data state machine
// that accumulates an envelope and appends accepted transfers
// to the shared mailstore.
package smtp

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/dhanji/frame/comm"
	"github.com/dhanji/frame/mailstore"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Structs

// Session holds the envelope being accumulated over one
// client connection and whether the session is inside a
// data transfer. It is owned exclusively by the goroutine
// handling that connection.
type Session struct {
	MailFrom  string
	RcptTo    []string
	InData    bool
	DataLines []string
}

type service struct {
	logger log.Logger
	store  *mailstore.Store
}

// Server accepts SMTP client connections and drives each
// session against the supplied service chain.
type Server struct {
	logger  log.Logger
	service Service
}

// Interfaces

// Service defines the interface the mock SMTP endpoint
// provides to connected clients.
type Service interface {

	// Helo acknowledges HELO and EHLO greetings.
	Helo(c *comm.Connection, s *Session, line string) bool

	// MailFrom stores the envelope sender of the session,
	// overwriting any prior value without validation.
	MailFrom(c *comm.Connection, s *Session, line string) bool

	// RcptTo appends one recipient to the envelope.
	RcptTo(c *comm.Connection, s *Session, line string) bool

	// Data switches the session into data transfer mode.
	Data(c *comm.Connection, s *Session) bool

	// DataLine consumes one raw line of a running data
	// transfer and finalizes the submission when the line
	// is the terminator.
	DataLine(c *comm.Connection, s *Session, raw string) bool

	// Quit says goodbye and ends the session.
	Quit(c *comm.Connection, s *Session) bool

	// Unrecognized answers any command outside the modeled
	// subset with the generic negative code.
	Unrecognized(c *comm.Connection, s *Session, line string) bool
}

// Functions

// NewService takes in all required parameters for spinning
// up the mock SMTP endpoint and returns a service struct
// wrapping all information.
func NewService(logger log.Logger, store *mailstore.Store) Service {

	return &service{
		logger: logger,
		store:  store,
	}
}

// NewServer takes in the fully wrapped service chain and
// returns a server struct ready to accept connections.
func NewServer(logger log.Logger, service Service) *Server {

	return &Server{
		logger:  logger,
		service: service,
	}
}

// Run loops over incoming connections at the SMTP endpoint
// and dispatches each one to a goroutine taking care of
// the commands supplied.
func (s *Server) Run(listener net.Listener, greeting string) error {

	for {
		// Accept request or fail on error.
		conn, err := listener.Accept()
		if err != nil {
			return fmt.Errorf("accepting incoming request at SMTP endpoint failed with: %v", err)
		}

		// Dispatch into own goroutine.
		go s.handleConnection(conn, greeting)
	}
}

// handleConnection performs the main actions on one client
// connection. It dispatches non-data commands by prefix,
// feeds data mode lines into the running transfer, and
// isolates any transport error to this one session.
func (s *Server) handleConnection(conn net.Conn, greeting string) {

	// Create a new connection struct for incoming request.
	c := comm.NewConnection(conn)
	defer c.Terminate()

	session := &Session{}

	// Send initial server greeting.
	err := c.Send(fmt.Sprintf("220 %s", greeting))
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return
	}

	for {

		// Inside a data transfer every line is raw message
		// content until the terminator arrives.
		if session.InData {

			raw, err := c.ReceiveRaw()
			if err != nil {
				s.logReceiveError(c, err)
				return
			}

			if !s.service.DataLine(c, session, raw) {
				return
			}

			continue
		}

		// Receive next incoming client command.
		line, err := c.Receive()
		if err != nil {
			s.logReceiveError(c, err)
			return
		}

		// Dispatch on the upper-cased command while handing
		// the original line to the handlers, so stored
		// addresses keep the client's spelling.
		command := strings.ToUpper(strings.TrimSpace(line))

		var cmdOK bool

		switch {

		case strings.HasPrefix(command, "HELO"), strings.HasPrefix(command, "EHLO"):
			cmdOK = s.service.Helo(c, session, line)

		case strings.HasPrefix(command, "MAIL FROM"):
			cmdOK = s.service.MailFrom(c, session, line)

		case strings.HasPrefix(command, "RCPT TO"):
			cmdOK = s.service.RcptTo(c, session, line)

		case command == "DATA":
			cmdOK = s.service.Data(c, session)

		case command == "QUIT":
			// A QUIT marks connection termination.
			s.service.Quit(c, session)
			return

		default:
			cmdOK = s.service.Unrecognized(c, session, line)
		}

		// Executed command above indicated failure in
		// operation. Return from function.
		if !cmdOK {
			return
		}
	}
}

// logReceiveError reports a failed read on one session,
// distinguishing a plain client disconnect from an actual
// transport error.
func (s *Server) logReceiveError(c *comm.Connection, err error) {

	if err == io.EOF {
		level.Debug(s.logger).Log("msg", fmt.Sprintf("client at %s disconnected", c.ClientAddr))
		return
	}

	level.Error(s.logger).Log(
		"msg", fmt.Sprintf("error while receiving text from client %s", c.ClientAddr),
		"err", err,
	)
}

// Helo acknowledges HELO and EHLO greetings. The supplied
// client identity is ignored.
func (s *service) Helo(c *comm.Connection, session *Session, line string) bool {
	return s.answer(c, "250 Mock SMTP Server")
}

// MailFrom stores the envelope sender of the session. The
// address is everything after the first colon, surrounding
// whitespace removed, angle brackets preserved. A prior
// value is overwritten without validation.
func (s *service) MailFrom(c *comm.Connection, session *Session, line string) bool {

	session.MailFrom = addressAfterColon(line)

	return s.answer(c, "250 OK")
}

// RcptTo appends one recipient to the envelope. Repeated
// commands accumulate recipients in the order they were
// supplied, duplicates included.
func (s *service) RcptTo(c *comm.Connection, session *Session, line string) bool {

	session.RcptTo = append(session.RcptTo, addressAfterColon(line))

	return s.answer(c, "250 OK")
}

// Data switches the session into data transfer mode.
func (s *service) Data(c *comm.Connection, session *Session) bool {

	ok := s.answer(c, "354 Start mail input; end with <CRLF>.<CRLF>")
	if ok {
		session.InData = true
	}

	return ok
}

// DataLine consumes one raw line of a running data transfer.
// Any line whose trimmed form is not exactly a single dot is
// appended verbatim, line ending included. The terminator
// finalizes the submission: the accumulated lines and the
// envelope snapshot become one stored transfer, the session
// buffers reset, and the session leaves data mode.
func (s *service) DataLine(c *comm.Connection, session *Session, raw string) bool {

	if strings.TrimSpace(raw) != "." {
		session.DataLines = append(session.DataLines, raw)
		return true
	}

	sub := mailstore.Submitted{
		From:       session.MailFrom,
		To:         append([]string(nil), session.RcptTo...),
		Data:       strings.Join(session.DataLines, ""),
		ReceivedAt: time.Now(),
	}

	mail := s.store.Append(sub)

	level.Info(s.logger).Log(
		"msg", "mail received",
		"id", mail.ID,
		"from", sub.From,
		"rcpt_count", len(sub.To),
	)

	ok := s.answer(c, "250 OK: Message accepted")

	session.MailFrom = ""
	session.RcptTo = nil
	session.DataLines = nil
	session.InData = false

	return ok
}

// Quit says goodbye and ends the session.
func (s *service) Quit(c *comm.Connection, session *Session) bool {
	return s.answer(c, "221 Bye")
}

// Unrecognized answers any command outside the modeled
// subset with the generic negative code. The connection
// stays open.
func (s *service) Unrecognized(c *comm.Connection, session *Session, line string) bool {
	return s.answer(c, "500 Command not recognized")
}

// answer writes one response line to the client and reports
// whether the session can continue.
func (s *service) answer(c *comm.Connection, text string) bool {

	err := c.Send(text)
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return false
	}

	return true
}

// addressAfterColon extracts the argument of MAIL FROM and
// RCPT TO commands: the substring after the first colon with
// surrounding whitespace removed.
func addressAfterColon(line string) string {

	parts := strings.SplitN(line, ":", 2)
	if len(parts) < 2 {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
