package comm

import (
	"bufio"
	"fmt"
	"net"
	"strings"
)

// Structs

// Connection carries all information specific to one
// accepted client socket and wraps it with the line-framed
// text exchange both mock protocol endpoints speak.
type Connection struct {
	Conn       net.Conn
	Reader     *bufio.Reader
	ClientAddr string
}

// Functions

// NewConnection bundles an accepted socket with a buffered
// reader for line-wise reception.
func NewConnection(conn net.Conn) *Connection {

	return &Connection{
		Conn:       conn,
		Reader:     bufio.NewReader(conn),
		ClientAddr: conn.RemoteAddr().String(),
	}
}

// Send takes in an answer text as a string, appends the
// protocol line ending, and writes it to the connection
// to the client. In case an error occurs, this method
// returns it to the calling function.
func (c *Connection) Send(text string) error {

	_, err := fmt.Fprintf(c.Conn, "%s\r\n", text)
	if err != nil {
		return err
	}

	return nil
}

// Receive wraps the main io.Reader function that awaits text
// until a newline symbol and deletes the symbols afterwards
// again. It returns the resulting string or an error.
func (c *Connection) Receive() (string, error) {

	text, err := c.Reader.ReadString('\n')
	if err != nil {
		return "", err
	}

	return strings.TrimRight(text, "\r\n"), nil
}

// ReceiveRaw awaits text until a newline symbol but leaves
// the line ending intact. The SMTP data phase uses it to
// accumulate message content verbatim.
func (c *Connection) ReceiveRaw() (string, error) {
	return c.Reader.ReadString('\n')
}

// Terminate closes the underlying socket to the client.
func (c *Connection) Terminate() error {
	return c.Conn.Close()
}
