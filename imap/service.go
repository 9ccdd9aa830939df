package imap

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/dhanji/frame/comm"
	"github.com/dhanji/frame/mailstore"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
)

// Structs

type service struct {
	logger log.Logger
	store  *mailstore.Store
}

// Server accepts IMAP client connections and drives each
// session against the supplied service chain.
type Server struct {
	logger  log.Logger
	service Service
}

// Interfaces

// Service defines the interface the mock IMAP endpoint
// provides to connected clients.
type Service interface {

	// Capability handles the IMAP CAPABILITY command.
	// It outputs the fixed capability line of the mock.
	Capability(c *comm.Connection, s *Session, req *Request) bool

	// Login accepts any supplied credentials and moves
	// the session to the authenticated state.
	Login(c *comm.Connection, s *Session, req *Request) bool

	// List replies with the fixed folder listing.
	List(c *comm.Connection, s *Session, req *Request) bool

	// Select marks INBOX as the selected folder and
	// reports message counts taken from the store.
	Select(c *comm.Connection, s *Session, req *Request) bool

	// Fetch emits one untagged line per stored message,
	// provided the session is authenticated and a folder
	// is selected. Otherwise the command is swallowed.
	Fetch(c *comm.Connection, s *Session, req *Request) bool

	// Search replies with the IDs of all stored messages,
	// ignoring any supplied criteria.
	Search(c *comm.Connection, s *Session, req *Request) bool

	// Logout correctly ends a connection with a client.
	Logout(c *comm.Connection, s *Session, req *Request) bool
}

// Functions

// NewService takes in all required parameters for spinning
// up the mock IMAP endpoint and returns a service struct
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

// Run loops over incoming connections at the IMAP endpoint
// and dispatches each one to a goroutine taking care of
// the commands supplied.
func (s *Server) Run(listener net.Listener, greeting string) error {

	for {
		// Accept request or fail on error.
		conn, err := listener.Accept()
		if err != nil {
			return fmt.Errorf("accepting incoming request at IMAP endpoint failed with: %v", err)
		}

		// Dispatch into own goroutine.
		go s.handleConnection(conn, greeting)
	}
}

// handleConnection performs the main actions on one client
// connection. It tracks session state, invokes the correct
// method for each supplied IMAP command, and isolates any
// transport error to this one session.
func (s *Server) handleConnection(conn net.Conn, greeting string) {

	// Create a new connection struct for incoming request.
	c := comm.NewConnection(conn)
	defer c.Terminate()

	session := &Session{State: StateNotAuthenticated}

	// Send initial server greeting.
	err := c.Send(fmt.Sprintf("* OK %s", greeting))
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return
	}

	// As long as we did not receive a LOGOUT command from
	// client or experienced an error, we accept requests.
	for session.State != StateLogout {

		// Receive next incoming client command.
		rawReq, err := c.Receive()
		if err != nil {

			// Check if error was a simple disconnect.
			if err == io.EOF {
				level.Debug(s.logger).Log("msg", fmt.Sprintf("client at %s disconnected", c.ClientAddr))
			} else {
				level.Error(s.logger).Log(
					"msg", fmt.Sprintf("error while receiving text from client %s", c.ClientAddr),
					"err", err,
				)
			}

			return
		}

		// Parse received next raw request into struct.
		// Lines with too few tokens are dropped without
		// an answer, the connection stays open.
		req, err := ParseRequest(rawReq)
		if err != nil {
			continue
		}

		var cmdOK bool

		switch req.Command {

		case "CAPABILITY":
			cmdOK = s.service.Capability(c, session, req)

		case "LOGIN":
			cmdOK = s.service.Login(c, session, req)

		case "LIST":
			cmdOK = s.service.List(c, session, req)

		case "SELECT":
			cmdOK = s.service.Select(c, session, req)

		case "FETCH":
			cmdOK = s.service.Fetch(c, session, req)

		case "SEARCH":
			cmdOK = s.service.Search(c, session, req)

		case "LOGOUT":
			cmdOK = s.service.Logout(c, session, req)

		default:
			// Client sent inappropriate command. Signal tagged error.
			err := c.Send(fmt.Sprintf("%s BAD Command not recognized", req.Tag))
			if err != nil {
				level.Error(s.logger).Log(
					"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
					"err", err,
				)
				return
			}

			cmdOK = true
		}

		// Executed command above indicated failure in
		// operation. Return from function.
		if !cmdOK {
			return
		}
	}
}

// Capability handles the IMAP CAPABILITY command.
// It outputs the fixed capability line of the mock.
func (s *service) Capability(c *comm.Connection, session *Session, req *Request) bool {

	err := c.Send(fmt.Sprintf("* CAPABILITY IMAP4rev1 AUTH=PLAIN\r\n%s OK CAPABILITY completed", req.Tag))
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return false
	}

	return true
}

// Login accepts any supplied credentials and moves the
// session to the authenticated state. The mock performs
// no actual credential check.
func (s *service) Login(c *comm.Connection, session *Session, req *Request) bool {

	session.State = StateAuthenticated

	err := c.Send(fmt.Sprintf("%s OK LOGIN completed", req.Tag))
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return false
	}

	return true
}

// List replies with the fixed three-folder listing. It does
// not require prior authentication.
func (s *service) List(c *comm.Connection, session *Session, req *Request) bool {

	answer := "* LIST (\\HasNoChildren) \"/\" \"INBOX\"\r\n" +
		"* LIST (\\HasNoChildren) \"/\" \"Sent\"\r\n" +
		"* LIST (\\HasNoChildren) \"/\" \"Drafts\"\r\n" +
		fmt.Sprintf("%s OK LIST completed", req.Tag)

	err := c.Send(answer)
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return false
	}

	return true
}

// Select marks INBOX as the selected folder regardless of
// the supplied mailbox name or prior session state, and
// reports message counts taken from the store.
func (s *service) Select(c *comm.Connection, session *Session, req *Request) bool {

	session.SelectedMailbox = "INBOX"

	numMessages := len(s.store.Emails())

	answer := fmt.Sprintf("* %d EXISTS\r\n", numMessages) +
		fmt.Sprintf("* %d RECENT\r\n", numMessages) +
		"* OK [UIDVALIDITY 1] UIDs valid\r\n" +
		fmt.Sprintf("* OK [UIDNEXT %d] Predicted next UID\r\n", s.store.NextID()) +
		fmt.Sprintf("%s OK [READ-WRITE] SELECT completed", req.Tag)

	err := c.Send(answer)
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return false
	}

	return true
}

// Fetch emits one untagged FETCH line per stored message.
// A session that is not authenticated or has no selected
// folder receives no answer at all, not even a tagged one.
func (s *service) Fetch(c *comm.Connection, session *Session, req *Request) bool {

	if (session.State != StateAuthenticated) || (session.SelectedMailbox == "") {
		return true
	}

	args := strings.ToUpper(req.Payload)

	for _, mail := range s.store.Emails() {

		answer := fmt.Sprintf("* %d FETCH (", mail.ID)

		if strings.Contains(args, "BODY") || strings.Contains(args, "RFC822") {
			body := mail.RFC822()
			answer += fmt.Sprintf("RFC822 {%d}\r\n%s", len(body), body)
		}

		if strings.Contains(args, "FLAGS") {
			answer += "FLAGS (\\Seen) "
		}

		answer += ")"

		err := c.Send(answer)
		if err != nil {
			level.Error(s.logger).Log(
				"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
				"err", err,
			)
			return false
		}
	}

	err := c.Send(fmt.Sprintf("%s OK FETCH completed", req.Tag))
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return false
	}

	return true
}

// Search replies with the space-joined IDs of all stored
// messages in store order. Supplied search criteria are
// ignored entirely.
func (s *service) Search(c *comm.Connection, session *Session, req *Request) bool {

	emails := s.store.Emails()

	ids := make([]string, 0, len(emails))
	for _, mail := range emails {
		ids = append(ids, strconv.Itoa(mail.ID))
	}

	answer := fmt.Sprintf("* SEARCH %s\r\n%s OK SEARCH completed", strings.Join(ids, " "), req.Tag)

	err := c.Send(answer)
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return false
	}

	return true
}

// Logout correctly ends a connection with a client. The
// session transitions to its terminal state and the server
// side closes the connection.
func (s *service) Logout(c *comm.Connection, session *Session, req *Request) bool {

	err := c.Send(fmt.Sprintf("* BYE Mock IMAP Server logging out\r\n%s OK LOGOUT completed", req.Tag))
	if err != nil {
		level.Error(s.logger).Log(
			"msg", fmt.Sprintf("error while sending text to client %s", c.ClientAddr),
			"err", err,
		)
		return false
	}

	session.State = StateLogout

	return true
}
