package filter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-message/textproto"
)

// maxPartBytes bounds how much of a single text part is read
const maxPartBytes = 1 << 20

// ParsedMessage is the classifiable content of a raw RFC 5322 message
type ParsedMessage struct {
	Subject string
	From    string
	Content string
}

// ParseMessage decodes a raw message: headers are RFC 2047 decoded, bodies are
// transfer-decoded and converted to UTF-8. Plain text parts are preferred;
// HTML parts are reduced to their text when no plain part exists.
func ParseMessage(r io.Reader) (*ParsedMessage, error) {
	mr, err := mail.CreateReader(r)
	if mr == nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	parsed := &ParsedMessage{}
	if subject, err := mr.Header.Subject(); err == nil {
		parsed.Subject = subject
	} else {
		parsed.Subject = mr.Header.Get("Subject")
	}
	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		parsed.From = from[0].Address
	}

	var plain, html []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if message.IsUnknownCharset(err) || message.IsUnknownEncoding(err) {
				continue
			}
			// keep whatever was read before the broken part
			break
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := inline.ContentType()
		if err != nil {
			contentType = "text/plain"
		}

		body, err := io.ReadAll(io.LimitReader(part.Body, maxPartBytes))
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			plain = append(plain, string(body))
		case strings.HasPrefix(contentType, "text/html"):
			html = append(html, htmlToText(string(body)))
		}
	}

	parts := plain
	if len(parts) == 0 {
		parts = html
	}
	parsed.Content = strings.TrimSpace(strings.Join(parts, "\n"))

	return parsed, nil
}

// htmlToText extracts the visible text of an HTML document, one block per line
func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, head").Remove()
	doc.Find("br, p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Annotation describes the classification headers added to a message
type Annotation struct {
	CategoryHeader   string
	ConfidenceHeader string
	ResponseHeader   string

	Category          string
	Confidence        float64
	SuggestedResponse string

	// SubjectPrefix is prepended to the subject when not empty and not already present
	SubjectPrefix string
}

// AnnotateMessage returns raw with the classification headers placed on top.
// Incoming copies of those headers are replaced. The body is copied untouched.
func AnnotateMessage(raw []byte, a Annotation) ([]byte, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	th, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read message header: %w", err)
	}
	h := mail.Header{Header: message.Header{Header: th}}

	if a.SubjectPrefix != "" {
		subject, err := h.Subject()
		if err != nil {
			subject = h.Get("Subject")
		}
		if !strings.HasPrefix(subject, a.SubjectPrefix) {
			h.SetSubject(a.SubjectPrefix + subject)
		}
	}

	h.SetText(a.ResponseHeader, a.SuggestedResponse)
	h.Set(a.ConfidenceHeader, fmt.Sprintf("%.4f", a.Confidence))
	h.Set(a.CategoryHeader, a.Category)

	var out bytes.Buffer
	if err := textproto.WriteHeader(&out, h.Header.Header); err != nil {
		return nil, fmt.Errorf("failed to write message header: %w", err)
	}
	if _, err := io.Copy(&out, br); err != nil {
		return nil, fmt.Errorf("failed to copy message body: %w", err)
	}

	return out.Bytes(), nil
}
