package ingest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mixelka/emailtriage/internal/classifier"
	"github.com/mixelka/emailtriage/internal/parser"
	"github.com/mixelka/emailtriage/internal/thread"
	"github.com/mixelka/emailtriage/pkg/models"
)

func crlf(s string) string {
	return strings.ReplaceAll(s, "\n", "\r\n")
}

var plainEML = crlf(`From: Alice Boss <boss@corp.example>
To: Me <me@example.com>, Team <team@example.com>
Subject: Budget review
Date: Tue, 03 Jun 2025 09:15:00 +0200
Message-Id: <budget-1@corp.example>
Content-Type: text/plain; charset=utf-8

Can you   review the budget?

Thanks
`)

var htmlReplyEML = crlf(`From: me@example.com
To: boss@corp.example
Subject: Re: Budget review
Date: Tue, 03 Jun 2025 10:00:00 +0000
Message-Id: <budget-2@example.com>
In-Reply-To: <budget-1@corp.example>
References: <budget-1@corp.example>
MIME-Version: 1.0
Content-Type: multipart/alternative; boundary="xyz"

--xyz
Content-Type: text/html; charset=utf-8

<html><body><p>Looks <b>fine</b>.</p><blockquote>Can you review the budget?</blockquote></body></html>
--xyz--
`)

func newTestImporter() *Importer {
	return NewImporter("Me@Example.com", parser.NewHTMLParser(parser.WithQuotesStripped()), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestParseEMLPlain(t *testing.T) {
	msg, err := newTestImporter().ParseEML(strings.NewReader(plainEML))
	require.NoError(t, err)

	assert.Equal(t, "budget-1@corp.example", msg.ID)
	assert.Equal(t, "", msg.ThreadID)
	assert.Equal(t, "boss@corp.example", msg.From)
	assert.Equal(t, "me@example.com, team@example.com", msg.To)
	assert.Equal(t, "Budget review", msg.Subject)
	assert.Equal(t, "Can you review the budget?\nThanks", msg.Body)
	assert.Equal(t, "Can you review the budget? Thanks", msg.Snippet)
	assert.True(t, msg.ReceivedAt.Equal(time.Date(2025, 6, 3, 7, 15, 0, 0, time.UTC)))
	assert.True(t, msg.NeedsReply)
	assert.False(t, msg.IsRead)

	assert.Equal(t, models.PriorityHigh, classifier.PriorityOf(msg))
}

func TestParseEMLHTMLReply(t *testing.T) {
	msg, err := newTestImporter().ParseEML(strings.NewReader(htmlReplyEML))
	require.NoError(t, err)

	assert.Equal(t, "budget-2@example.com", msg.ID)
	assert.Equal(t, "budget-1@corp.example", msg.ThreadID)
	assert.Equal(t, "Looks fine.", msg.Body)
	assert.False(t, msg.NeedsReply, "messages from the owner need no reply")
}

func TestParseEMLThreadsWithRoot(t *testing.T) {
	im := newTestImporter()
	root, err := im.ParseEML(strings.NewReader(plainEML))
	require.NoError(t, err)
	reply, err := im.ParseEML(strings.NewReader(htmlReplyEML))
	require.NoError(t, err)

	threads := thread.Group([]models.Message{root, reply})
	require.Len(t, threads, 1)
	assert.Equal(t, 2, threads[0].Count())
}

func TestParseEMLWithoutMessageID(t *testing.T) {
	raw := crlf("From: a@b.c\nSubject: hi\n\nbody\n")
	msg, err := newTestImporter().ParseEML(strings.NewReader(raw))
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "body", msg.Body)
}

func TestImportFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "one.eml")
	require.NoError(t, os.WriteFile(good, []byte(plainEML), 0644))
	missing := filepath.Join(dir, "missing.eml")

	msgs, skipped := newTestImporter().ImportFiles([]string{good, missing})
	require.Len(t, msgs, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "budget-1@corp.example", msgs[0].ID)
}

func TestIsMailFile(t *testing.T) {
	assert.True(t, IsMailFile("inbox/a.eml"))
	assert.True(t, IsMailFile("B.EML"))
	assert.False(t, IsMailFile("notes.txt"))
	assert.False(t, IsMailFile("README"))
}

func TestSampleMailbox(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	msgs := SampleMailbox("me@example.com", now)
	require.Len(t, msgs, 25)

	first, reply := msgs[0], msgs[1]
	assert.Equal(t, "sample-00", first.ID)
	assert.Equal(t, "thread-0", first.ThreadID)
	assert.Equal(t, "john.smith@techcorp.com", first.From)
	assert.True(t, first.NeedsReply)
	assert.True(t, now.Equal(first.ReceivedAt))

	assert.Equal(t, "thread-0", reply.ThreadID)
	assert.Equal(t, "me@example.com", reply.From)
	assert.Equal(t, "sarah.johnson@clientco.com", reply.To)
	assert.Equal(t, "Re: Team meeting scheduled for Monday", reply.Subject)
	assert.False(t, reply.NeedsReply)
	assert.True(t, now.Add(-30*time.Minute).Equal(reply.ReceivedAt))

	assert.Len(t, thread.Group(msgs), 13)

	assert.Equal(t, models.PriorityUrgent, classifier.PriorityOf(msgs[3]))
	assert.Equal(t, classifier.CategoryFinancial, classifier.CategoryOf(msgs[6]))
}

func TestSampleMailboxDefaultsOwner(t *testing.T) {
	msgs := SampleMailbox("", time.Now())
	assert.Equal(t, "Me", msgs[1].From)
	assert.Equal(t, "Me", msgs[0].To)
}
