// Package mailstore provides the process-lifetime, in-memory
// collection of messages shared between the mock IMAP and SMTP
// endpoints. The seed messages are immutable, accepted SMTP
// transfers are append-only.
package mailstore

import (
	"strings"
	"sync"
	"time"
)

// Structs

// Email represents one retrievable message in the store.
type Email struct {
	ID       int
	From     string
	To       string
	Subject  string
	Date     string
	Body     string
	ThreadID string
}

// Submitted represents one mail transfer accepted by the
// mock SMTP endpoint. To preserves the order recipients
// were supplied in, duplicates included. Data is the raw
// concatenation of all received data lines, unparsed.
type Submitted struct {
	From       string
	To         []string
	Data       string
	ReceivedAt time.Time
}

// Store is the only state reachable from multiple client
// sessions at once. One mutex guards the append path, the
// ID assignment, and the snapshot reads.
type Store struct {
	lock      sync.Mutex
	emails    []Email
	submitted []Submitted
	nextID    int
}

// Functions

// NewStore returns a store seeded with the canonical Frame
// test messages.
func NewStore() *Store {

	emails := seedEmails()

	return &Store{
		emails: emails,
		nextID: len(emails) + 1,
	}
}

// seedEmails returns the fixed message set every fresh
// store starts with.
func seedEmails() []Email {

	return []Email{
		{
			ID:       1,
			From:     "alice@example.com",
			To:       "test@example.com",
			Subject:  "Welcome to Frame Email Client",
			Date:     "Mon, 15 Jan 2024 10:30:00 +0000",
			Body:     "Hello! This is a test email to help you get started with Frame Email Client.",
			ThreadID: "thread-1",
		},
		{
			ID:       2,
			From:     "bob@example.com",
			To:       "test@example.com",
			Subject:  "Re: Welcome to Frame Email Client",
			Date:     "Mon, 15 Jan 2024 11:00:00 +0000",
			Body:     "Thanks for the welcome! This looks great.",
			ThreadID: "thread-1",
		},
		{
			ID:       3,
			From:     "charlie@example.com",
			To:       "test@example.com",
			Subject:  "Meeting Tomorrow",
			Date:     "Mon, 15 Jan 2024 14:00:00 +0000",
			Body:     "Don't forget about our meeting tomorrow at 2 PM.",
			ThreadID: "thread-2",
		},
		{
			ID:       4,
			From:     "alice@example.com",
			To:       "test@example.com",
			Subject:  "Re: Meeting Tomorrow",
			Date:     "Mon, 15 Jan 2024 15:30:00 +0000",
			Body:     "I'll be there!",
			ThreadID: "thread-2",
		},
		{
			ID:       5,
			From:     "dave@example.com",
			To:       "test@example.com",
			Subject:  "Project Update",
			Date:     "Tue, 16 Jan 2024 09:00:00 +0000",
			Body:     "Here's the latest update on the project. Everything is on track.",
			ThreadID: "thread-3",
		},
	}
}

// Emails returns all messages in store order, seed messages
// first, runtime-appended messages after them.
func (s *Store) Emails() []Email {

	s.lock.Lock()
	defer s.lock.Unlock()

	emails := make([]Email, len(s.emails))
	copy(emails, s.emails)

	return emails
}

// NextID returns the ID the next appended message will be
// assigned. IMAP reports it as UIDNEXT.
func (s *Store) NextID() int {

	s.lock.Lock()
	defer s.lock.Unlock()

	return s.nextID
}

// Append takes in an accepted SMTP transfer, assigns it the
// next free ID, and stores it both as a submission record
// and as a message visible to IMAP reads. It returns the
// stored message.
func (s *Store) Append(sub Submitted) Email {

	s.lock.Lock()
	defer s.lock.Unlock()

	mail := Email{
		ID:   s.nextID,
		From: sub.From,
		To:   strings.Join(sub.To, ", "),
		Date: sub.ReceivedAt.UTC().Format("Mon, 02 Jan 2006 15:04:05 +0000"),
		Body: sub.Data,
	}

	s.nextID++
	s.emails = append(s.emails, mail)
	s.submitted = append(s.submitted, sub)

	return mail
}

// Submitted returns a snapshot of all accepted transfers
// in acceptance order.
func (s *Store) Submitted() []Submitted {

	s.lock.Lock()
	defer s.lock.Unlock()

	submitted := make([]Submitted, len(s.submitted))
	copy(submitted, s.submitted)

	return submitted
}
