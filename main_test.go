package main

import (
	"net"
	"testing"

	goimap "github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"
	smtpclient "github.com/emersion/go-smtp"

	"github.com/dhanji/frame/imap"
	"github.com/dhanji/frame/mailstore"
	"github.com/dhanji/frame/smtp"
	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
)

// Structs

type testEndpoints struct {
	imapAddr string
	smtpAddr string
	store    *mailstore.Store
}

// Functions

// startEndpoints assembles both protocol endpoints the same
// way main does, on ephemeral ports, around one shared store.
func startEndpoints(t *testing.T) *testEndpoints {

	logger := log.NewNopLogger()
	store := mailstore.NewStore()
	metrics := NewMockMetrics("")

	var imapService imap.Service
	imapService = imap.NewService(logger, store)
	imapService = imap.NewLoggingService(imapService, logger)
	imapService = imap.NewMetricsService(imapService, metrics.IMAP.Logins, metrics.IMAP.Logouts)
	imapServer := imap.NewServer(logger, imapService)

	var smtpService smtp.Service
	smtpService = smtp.NewService(logger, store)
	smtpService = smtp.NewLoggingService(smtpService, logger)
	smtpService = smtp.NewMetricsService(smtpService, metrics.SMTP.Accepted)
	smtpServer := smtp.NewServer(logger, smtpService)

	imapListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening for IMAP on ephemeral port failed: %v", err)
	}

	smtpListener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listening for SMTP on ephemeral port failed: %v", err)
	}

	go func() {
		_ = imapServer.Run(imapListener, "Mock IMAP Server Ready")
	}()
	go func() {
		_ = smtpServer.Run(smtpListener, "Mock SMTP Server Ready")
	}()

	t.Cleanup(func() {
		_ = imapListener.Close()
		_ = smtpListener.Close()
	})

	return &testEndpoints{
		imapAddr: imapListener.Addr().String(),
		smtpAddr: smtpListener.Addr().String(),
		store:    store,
	}
}

// TestIMAPEndToEnd drives the IMAP endpoint with an actual
// protocol client library instead of scripted raw lines.
func TestIMAPEndToEnd(t *testing.T) {

	env := startEndpoints(t)

	c, err := imapclient.Dial(env.imapAddr)
	if err != nil {
		t.Fatalf("connecting IMAP client failed: %v", err)
	}
	defer c.Close()

	err = c.Login("test@example.com", "password123")
	assert.Nil(t, err, "any credentials should be accepted")

	status, err := c.Select("INBOX", false)
	assert.Nil(t, err, "selecting INBOX should not fail")
	if assert.NotNil(t, status, "SELECT should produce a mailbox status") {
		assert.Equal(t, uint32(5), status.Messages, "seeded message count")
		assert.Equal(t, uint32(1), status.UidValidity, "fixed UIDVALIDITY")
		assert.Equal(t, uint32(6), status.UidNext, "UIDNEXT continues the seeded ID sequence")
	}

	criteria := goimap.NewSearchCriteria()
	criteria.WithoutFlags = []string{goimap.DeletedFlag}

	ids, err := c.Search(criteria)
	assert.Nil(t, err, "searching should not fail")
	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, ids, "criteria are ignored, all IDs come back")

	seqset := new(goimap.SeqSet)
	seqset.AddRange(1, 5)

	messages := make(chan *goimap.Message, 10)
	err = c.Fetch(seqset, []goimap.FetchItem{goimap.FetchFlags}, messages)
	assert.Nil(t, err, "fetching flags should not fail")

	var fetched int
	for msg := range messages {
		fetched++
		assert.Contains(t, msg.Flags, goimap.SeenFlag, "every message carries the seen flag")
	}
	assert.Equal(t, 5, fetched, "one FETCH answer per seeded message")

	err = c.Logout()
	assert.Nil(t, err, "logging out should not fail")
}

// TestSMTPEndToEnd submits a message through an actual SMTP
// client library and checks that it becomes visible to the
// shared store, and thereby to the IMAP endpoint.
func TestSMTPEndToEnd(t *testing.T) {

	env := startEndpoints(t)

	c, err := smtpclient.Dial(env.smtpAddr)
	if err != nil {
		t.Fatalf("connecting SMTP client failed: %v", err)
	}

	err = c.Hello("frame.test")
	assert.Nil(t, err, "greeting should be accepted")

	err = c.Mail("sender@frame.test", nil)
	assert.Nil(t, err, "MAIL should be accepted")

	err = c.Rcpt("one@frame.test", nil)
	assert.Nil(t, err, "first RCPT should be accepted")

	err = c.Rcpt("two@frame.test", nil)
	assert.Nil(t, err, "second RCPT should be accepted")

	wc, err := c.Data()
	assert.Nil(t, err, "DATA should be accepted")

	_, err = wc.Write([]byte("Subject: e2e\r\n\r\nhello from the real client\r\n"))
	assert.Nil(t, err, "writing message content should not fail")

	err = wc.Close()
	assert.Nil(t, err, "finishing the transfer should yield acceptance")

	_ = c.Quit()

	subs := env.store.Submitted()
	if assert.Equal(t, 1, len(subs), "exactly one transfer should be stored") {
		assert.Equal(t, "<sender@frame.test>", subs[0].From, "sender as supplied on the wire")
		assert.Equal(t, []string{"<one@frame.test>", "<two@frame.test>"}, subs[0].To, "recipients in supplied order")
		assert.Equal(t, "Subject: e2e\r\n\r\nhello from the real client\r\n", subs[0].Data, "content verbatim")
	}

	// The submission surfaces on the IMAP side of the mock.
	ic, err := imapclient.Dial(env.imapAddr)
	if err != nil {
		t.Fatalf("connecting IMAP client failed: %v", err)
	}
	defer ic.Close()

	err = ic.Login("test@example.com", "password123")
	assert.Nil(t, err, "any credentials should be accepted")

	status, err := ic.Select("INBOX", false)
	assert.Nil(t, err, "selecting INBOX should not fail")
	if assert.NotNil(t, status, "SELECT should produce a mailbox status") {
		assert.Equal(t, uint32(6), status.Messages, "seeded messages plus the submitted one")
	}

	err = ic.Logout()
	assert.Nil(t, err, "logging out should not fail")
}
