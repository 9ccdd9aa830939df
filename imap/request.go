// Package imap implements the scripted IMAP endpoint of the
// mock mail server. It emulates the wire behavior a simple
// email client expects, not the full IMAP4rev1 grammar.
package imap

import (
	"strings"

	"github.com/pkg/errors"
)

// Variables

// ErrTooFewTokens is returned for client lines carrying
// fewer than two whitespace-delimited tokens. Such lines
// are dropped without sending any answer.
var ErrTooFewTokens = errors.New("line carries fewer than two tokens")

// Structs

// Request represents the parsed content of a client command
// line. Payload will be examined further in command specific
// functions.
type Request struct {
	Tag     string
	Command string
	Payload string
}

// Functions

// ParseRequest takes in a raw string representing a received
// IMAP request and parses it into the defined request
// structure above. The line is split at space symbols at
// maximum two times, the command token is matched
// case-insensitively.
func ParseRequest(req string) (*Request, error) {

	tmpReq := strings.SplitN(strings.TrimSpace(req), " ", 3)
	if len(tmpReq) < 2 {
		return nil, ErrTooFewTokens
	}

	finalReq := &Request{
		Tag:     tmpReq[0],
		Command: strings.ToUpper(tmpReq[1]),
	}

	if len(tmpReq) > 2 {
		finalReq.Payload = tmpReq[2]
	}

	return finalReq, nil
}
