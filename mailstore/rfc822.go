package mailstore

import (
	"fmt"
	"strings"
)

// Functions

// RFC822 renders the message as the raw RFC822 text served
// inside FETCH literals: header block, blank line, body,
// every line terminated with CRLF. The byte length of the
// returned string is exactly the length announced in the
// literal prefix.
func (e Email) RFC822() string {

	var msg strings.Builder

	fmt.Fprintf(&msg, "From: %s\r\n", e.From)
	fmt.Fprintf(&msg, "To: %s\r\n", e.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", e.Subject)
	fmt.Fprintf(&msg, "Date: %s\r\n", e.Date)
	fmt.Fprintf(&msg, "Message-ID: <%d@mock.example.com>\r\n", e.ID)

	// Threaded seed messages carry a synthesized reference
	// to their thread token.
	if e.ThreadID != "" {
		fmt.Fprintf(&msg, "In-Reply-To: <%s@mock.example.com>\r\n", e.ThreadID)
	}

	msg.WriteString("\r\n")
	msg.WriteString(e.Body)
	msg.WriteString("\r\n")

	return msg.String()
}
