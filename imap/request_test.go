package imap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Variables

var parseRequestTests = []struct {
	in      string
	tag     string
	command string
	payload string
}{
	{"a1 CAPABILITY", "a1", "CAPABILITY", ""},
	{"a2 login user pass", "a2", "LOGIN", "user pass"},
	{"a3 fetch 1:* (FLAGS RFC822)", "a3", "FETCH", "1:* (FLAGS RFC822)"},
	{"A004 SELECT INBOX", "A004", "SELECT", "INBOX"},
}

var malformedRequests = []string{
	"CAPABILITY",
	"",
	"   ",
	"justonetoken",
}

// Functions

// TestParseRequest executes a table test on the
// implemented ParseRequest() function.
func TestParseRequest(t *testing.T) {

	for _, tt := range parseRequestTests {

		req, err := ParseRequest(tt.in)
		assert.Nil(t, err, "ParseRequest should accept %q", tt.in)

		assert.Equal(t, tt.tag, req.Tag, "Tag of %q", tt.in)
		assert.Equal(t, tt.command, req.Command, "Command of %q should be upper-cased", tt.in)
		assert.Equal(t, tt.payload, req.Payload, "Payload of %q", tt.in)
	}
}

// TestParseRequestTooFewTokens verifies that lines carrying
// fewer than two tokens are rejected with the sentinel that
// makes the session loop drop them silently.
func TestParseRequestTooFewTokens(t *testing.T) {

	for _, in := range malformedRequests {

		req, err := ParseRequest(in)
		assert.Nil(t, req, "ParseRequest should not build a request from %q", in)
		assert.Equal(t, ErrTooFewTokens, err, "ParseRequest should reject %q with the sentinel", in)
	}
}
