// Package ingest turns external mail sources into message records.
package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"

	"github.com/mixelka/emailtriage/internal/parser"
	"github.com/mixelka/emailtriage/pkg/models"
)

const snippetLength = 200

// Importer parses RFC 5322 messages into message records
type Importer struct {
	owner      string
	htmlParser *parser.HTMLParser
	logger     *slog.Logger
}

// NewImporter creates an importer. Messages sent by owner are recorded as
// not needing a reply.
func NewImporter(owner string, htmlParser *parser.HTMLParser, logger *slog.Logger) *Importer {
	return &Importer{
		owner:      strings.ToLower(strings.TrimSpace(owner)),
		htmlParser: htmlParser,
		logger:     logger.With("component", "ingest"),
	}
}

// ParseEML reads one message. The thread is the root of References, falling
// back to In-Reply-To; a message with neither starts its own thread.
func (im *Importer) ParseEML(r io.Reader) (models.Message, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return models.Message{}, fmt.Errorf("failed to read message: %w", err)
	}
	defer mr.Close()

	h := mr.Header
	msg := models.Message{}

	if id, err := h.MessageID(); err == nil && id != "" {
		msg.ID = id
	} else {
		msg.ID = uuid.NewString()
	}

	if refs, err := h.MsgIDList("References"); err == nil && len(refs) > 0 {
		msg.ThreadID = refs[0]
	} else if parents, err := h.MsgIDList("In-Reply-To"); err == nil && len(parents) > 0 {
		msg.ThreadID = parents[0]
	}

	if subject, err := h.Subject(); err == nil {
		msg.Subject = subject
	}
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = from[0].Address
	}
	if to, err := h.AddressList("To"); err == nil {
		addrs := make([]string, 0, len(to))
		for _, a := range to {
			addrs = append(addrs, a.Address)
		}
		msg.To = strings.Join(addrs, ", ")
	}
	if date, err := h.Date(); err == nil {
		msg.ReceivedAt = date.UTC()
	}

	body, err := im.readBody(mr)
	if err != nil {
		return models.Message{}, err
	}
	msg.Body = body
	msg.Snippet = parser.Snippet(body, snippetLength)
	msg.NeedsReply = im.owner == "" || strings.ToLower(msg.From) != im.owner

	return msg, nil
}

// readBody returns the first text/plain part, or the first text/html part
// converted to text when there is no plain part.
func (im *Importer) readBody(mr *mail.Reader) (string, error) {
	var plain, html string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read part: %w", err)
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := h.ContentType()
		if err != nil {
			contentType = "text/plain"
		}

		switch {
		case contentType == "text/plain" && plain == "":
			data, err := io.ReadAll(p.Body)
			if err != nil {
				return "", fmt.Errorf("failed to read text part: %w", err)
			}
			plain = string(data)
		case contentType == "text/html" && html == "":
			data, err := io.ReadAll(p.Body)
			if err != nil {
				return "", fmt.Errorf("failed to read html part: %w", err)
			}
			html = string(data)
		}
	}

	if plain != "" {
		return im.htmlParser.Clean(plain), nil
	}
	if html != "" {
		text, err := im.htmlParser.Parse(html)
		if err != nil {
			im.logger.Warn("failed to parse HTML", "error", err)
			return "", nil
		}
		return text, nil
	}
	return "", nil
}

// ImportFiles parses every file in paths. Unreadable files are logged and
// skipped; the count of skipped files is returned alongside the messages.
func (im *Importer) ImportFiles(paths []string) ([]models.Message, int) {
	msgs := make([]models.Message, 0, len(paths))
	skipped := 0
	for _, path := range paths {
		msg, err := im.parseFile(path)
		if err != nil {
			im.logger.Warn("failed to import file", "path", path, "error", err)
			skipped++
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, skipped
}

func (im *Importer) parseFile(path string) (models.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return im.ParseEML(f)
}

// IsMailFile reports whether a path looks like a stored message
func IsMailFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".eml")
}
