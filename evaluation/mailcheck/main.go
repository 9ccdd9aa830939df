// Command mailcheck connects to a running mock mail server
// and walks both endpoints through a fixed command sequence.
// It is a connectivity check for client development setups,
// not a test suite: each step reports pass or fail and the
// process exits non-zero if anything failed.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/dhanji/frame/comm"
)

// Functions

func main() {

	imapAddrFlag := flag.String("imap-addr", "127.0.0.1:1143", "Address of the mock IMAP endpoint.")
	smtpAddrFlag := flag.String("smtp-addr", "127.0.0.1:1587", "Address of the mock SMTP endpoint.")
	timeoutFlag := flag.Duration("timeout", 5*time.Second, "Dial and exchange deadline per connection.")
	flag.Parse()

	imapOK := checkIMAP(*imapAddrFlag, *timeoutFlag)
	smtpOK := checkSMTP(*smtpAddrFlag, *timeoutFlag)

	if !imapOK || !smtpOK {
		fmt.Println("[FAIL] some checks failed, is the mock server running?")
		os.Exit(1)
	}

	fmt.Println("[PASS] all checks passed")
}

// dial connects to one endpoint and arms a deadline covering
// the whole scripted exchange.
func dial(addr string, timeout time.Duration) (*comm.Connection, error) {

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, err
	}

	_ = conn.SetDeadline(time.Now().Add(timeout))

	return comm.NewConnection(conn), nil
}

// checkIMAP runs the scripted IMAP session an email client
// performs on first contact.
func checkIMAP(addr string, timeout time.Duration) bool {

	fmt.Printf("checking IMAP endpoint at %s\n", addr)

	c, err := dial(addr, timeout)
	if err != nil {
		fmt.Printf("[FAIL] imap connect: %v\n", err)
		return false
	}
	defer c.Terminate()

	greeting, err := c.Receive()
	if err != nil || !strings.HasPrefix(greeting, "* OK") {
		fmt.Printf("[FAIL] imap greeting: answer %q, error %v\n", greeting, err)
		return false
	}
	fmt.Println("[PASS] imap greeting")

	steps := []struct {
		name    string
		tag     string
		command string
	}{
		{"login", "A001", "LOGIN test@example.com password123"},
		{"list", "A002", `LIST "" "*"`},
		{"select", "A003", "SELECT INBOX"},
		{"search", "A004", "SEARCH ALL"},
		{"logout", "A005", "LOGOUT"},
	}

	for _, step := range steps {

		if err := roundTrip(c, step.tag, step.command); err != nil {
			fmt.Printf("[FAIL] imap %s: %v\n", step.name, err)
			return false
		}

		fmt.Printf("[PASS] imap %s\n", step.name)
	}

	return true
}

// roundTrip sends one tagged command and drains answer lines
// until the tagged completion arrives, which has to be an OK.
func roundTrip(c *comm.Connection, tag string, command string) error {

	err := c.Send(fmt.Sprintf("%s %s", tag, command))
	if err != nil {
		return err
	}

	for {
		answer, err := c.Receive()
		if err != nil {
			return err
		}

		if !strings.HasPrefix(answer, tag+" ") {
			continue
		}

		if !strings.HasPrefix(answer, tag+" OK") {
			return fmt.Errorf("unexpected completion: %s", answer)
		}

		return nil
	}
}

// checkSMTP runs one complete transfer against the SMTP
// endpoint.
func checkSMTP(addr string, timeout time.Duration) bool {

	fmt.Printf("checking SMTP endpoint at %s\n", addr)

	c, err := dial(addr, timeout)
	if err != nil {
		fmt.Printf("[FAIL] smtp connect: %v\n", err)
		return false
	}
	defer c.Terminate()

	steps := []struct {
		name string
		send string
		want string
	}{
		{"greeting", "", "220"},
		{"helo", "HELO mailcheck.local", "250"},
		{"mail from", "MAIL FROM: <mailcheck@example.com>", "250"},
		{"rcpt to", "RCPT TO: <test@example.com>", "250"},
		{"data", "DATA", "354"},
	}

	for _, step := range steps {

		if err := expectCode(c, step.send, step.want); err != nil {
			fmt.Printf("[FAIL] smtp %s: %v\n", step.name, err)
			return false
		}

		fmt.Printf("[PASS] smtp %s\n", step.name)
	}

	// Message content followed by the terminator.
	for _, line := range []string{"Subject: connectivity check", "", "The mock SMTP endpoint accepts mail."} {
		if err := c.Send(line); err != nil {
			fmt.Printf("[FAIL] smtp content: %v\n", err)
			return false
		}
	}

	if err := expectCode(c, ".", "250"); err != nil {
		fmt.Printf("[FAIL] smtp terminator: %v\n", err)
		return false
	}
	fmt.Println("[PASS] smtp transfer accepted")

	if err := expectCode(c, "QUIT", "221"); err != nil {
		fmt.Printf("[FAIL] smtp quit: %v\n", err)
		return false
	}
	fmt.Println("[PASS] smtp quit")

	return true
}

// expectCode sends one line, unless empty, and checks the
// answer against the expected reply code.
func expectCode(c *comm.Connection, send string, code string) error {

	if send != "" {
		err := c.Send(send)
		if err != nil {
			return err
		}
	}

	answer, err := c.Receive()
	if err != nil {
		return err
	}

	if !strings.HasPrefix(answer, code) {
		return fmt.Errorf("answer %q, want code %s", answer, code)
	}

	return nil
}
