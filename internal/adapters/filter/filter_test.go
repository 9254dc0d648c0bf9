package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-message/mail"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/whitelist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedClassifier struct {
	result core.ClassificationResult
	seen   []core.EmailInput
}

func (c *fixedClassifier) Classify(_ context.Context, email core.EmailInput) core.ClassificationResult {
	c.seen = append(c.seen, email)
	return c.result
}

type fixedResponses string

func (r fixedResponses) Select(core.Category, string) string { return string(r) }

func newService(category core.Category) (*core.EmailService, *fixedClassifier) {
	classifier := &fixedClassifier{result: core.ClassificationResult{
		Category:   category,
		Confidence: 0.815,
		Route:      core.RouteFallback,
	}}
	return core.NewEmailService(classifier, fixedResponses("Obrigado pela mensagem, não há ação necessária."), nil, zap.NewNop()), classifier
}

func serverConfig() config.ServerConfig {
	return config.ServerConfig{
		ModifySubject: true,
		SubjectPrefix: "[IMPRODUTIVO] ",
		Headers: config.HeadersConfig{
			Category:   "X-Email-Category",
			Confidence: "X-Email-Confidence",
			Response:   "X-Email-Suggested-Response",
		},
	}
}

const plainMessage = "From: Ana <ana@example.com>\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: =?UTF-8?Q?Reuni=C3=A3o_de_projeto?=\r\n" +
	"X-Email-Category: produtivo\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Precisamos alinhar o projeto.\r\n"

const multipartMessage = "From: promo@shop.com\r\n" +
	"Subject: Oferta\r\n" +
	"MIME-Version: 1.0\r\n" +
	"Content-Type: multipart/mixed; boundary=outer\r\n" +
	"\r\n" +
	"--outer\r\n" +
	"Content-Type: multipart/alternative; boundary=inner\r\n" +
	"\r\n" +
	"--inner\r\n" +
	"Content-Type: text/plain; charset=iso-8859-1\r\n" +
	"Content-Transfer-Encoding: quoted-printable\r\n" +
	"\r\n" +
	"Promo=E7=E3o imperd=EDvel\r\n" +
	"--inner\r\n" +
	"Content-Type: text/html\r\n" +
	"\r\n" +
	"<p>Promoção</p>\r\n" +
	"--inner--\r\n" +
	"--outer\r\n" +
	"Content-Type: application/pdf\r\n" +
	"Content-Disposition: attachment; filename=a.pdf\r\n" +
	"\r\n" +
	"JVBERi0=\r\n" +
	"--outer--\r\n"

const htmlMessage = "From: news@site.com\r\n" +
	"Subject: News\r\n" +
	"Content-Type: text/html; charset=utf-8\r\n" +
	"\r\n" +
	"<html><head><style>p{color:red}</style></head><body><h1>Ganhe</h1><p>um   prêmio</p><script>x()</script></body></html>\r\n"

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		subject string
		from    string
		content string
	}{
		{"plain with encoded subject", plainMessage, "Reunião de projeto", "ana@example.com", "Precisamos alinhar o projeto."},
		{"nested multipart prefers plain text", multipartMessage, "Oferta", "promo@shop.com", "Promoção imperdível"},
		{"html only", htmlMessage, "News", "news@site.com", "Ganhe\num prêmio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMessage(strings.NewReader(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.subject, got.Subject)
			assert.Equal(t, tt.from, got.From)
			assert.Equal(t, tt.content, got.Content)
		})
	}
}

func TestAnnotateMessage(t *testing.T) {
	annotation := Annotation{
		CategoryHeader:    "X-Email-Category",
		ConfidenceHeader:  "X-Email-Confidence",
		ResponseHeader:    "X-Email-Suggested-Response",
		Category:          "improdutivo",
		Confidence:        0.815,
		SuggestedResponse: "Não há ação necessária.",
		SubjectPrefix:     "[IMPRODUTIVO] ",
	}

	out, err := AnnotateMessage([]byte(plainMessage), annotation)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("X-Email-Category: improdutivo\r\n")), string(out))
	assert.True(t, bytes.HasSuffix(out, []byte("\r\n\r\nPrecisamos alinhar o projeto.\r\n")))

	mr, err := mail.CreateReader(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, []string{"improdutivo"}, mr.Header.Values("X-Email-Category"), "incoming copy is replaced")
	assert.Equal(t, "0.8150", mr.Header.Get("X-Email-Confidence"))
	response, err := mr.Header.Text("X-Email-Suggested-Response")
	require.NoError(t, err)
	assert.Equal(t, "Não há ação necessária.", response)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "[IMPRODUTIVO] Reunião de projeto", subject)
	assert.Equal(t, "bob@example.com", mr.Header.Get("To"))

	again, err := AnnotateMessage(out, annotation)
	require.NoError(t, err)
	mr, err = mail.CreateReader(bytes.NewReader(again))
	require.NoError(t, err)
	subject, err = mr.Header.Subject()
	require.NoError(t, err)
	assert.Equal(t, "[IMPRODUTIVO] Reunião de projeto", subject, "prefix is not doubled")
}

func TestAnnotateMessageKeepsSubjectWithoutPrefix(t *testing.T) {
	out, err := AnnotateMessage([]byte(plainMessage), Annotation{
		CategoryHeader:   "X-Email-Category",
		ConfidenceHeader: "X-Email-Confidence",
		ResponseHeader:   "X-Email-Suggested-Response",
		Category:         "produtivo",
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "Subject: =?UTF-8?Q?Reuni=C3=A3o_de_projeto?=\r\n")
}

type forwarded struct {
	sender     string
	recipients []string
	data       []byte
}

func newTestPostfixFilter(category core.Category, forwardErr error, skip ...string) (*PostfixFilter, *fixedClassifier, *[]forwarded) {
	service, classifier := newService(category)
	f := NewPostfixFilter(service, whitelist.NewChecker(skip, zap.NewNop()), serverConfig(), zap.NewNop())

	var sent []forwarded
	f.forward = func(sender string, recipients []string, data []byte) error {
		sent = append(sent, forwarded{sender, recipients, data})
		return forwardErr
	}
	return f, classifier, &sent
}

func deliver(t *testing.T, f *PostfixFilter, sender, raw string) error {
	t.Helper()
	session, err := (&smtpBackend{filter: f}).NewSession(nil)
	require.NoError(t, err)
	require.NoError(t, session.Mail(sender, nil))
	require.NoError(t, session.Rcpt("bob@example.com", nil))
	return session.Data(strings.NewReader(raw))
}

func TestPostfixSessionAnnotatesAndForwards(t *testing.T) {
	f, classifier, sent := newTestPostfixFilter(core.CategoryUnproductive, nil)

	require.NoError(t, deliver(t, f, "bounce@example.com", plainMessage))

	require.Len(t, classifier.seen, 1)
	assert.Equal(t, core.EmailInput{
		Subject: "Reunião de projeto",
		Content: "Precisamos alinhar o projeto.",
		Sender:  "ana@example.com",
	}, classifier.seen[0])

	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.Equal(t, "bounce@example.com", msg.sender)
	assert.Equal(t, []string{"bob@example.com"}, msg.recipients)
	assert.Contains(t, string(msg.data), "X-Email-Category: improdutivo\r\n")

	reparsed, err := ParseMessage(bytes.NewReader(msg.data))
	require.NoError(t, err)
	assert.Equal(t, "[IMPRODUTIVO] Reunião de projeto", reparsed.Subject)
	assert.Equal(t, "Precisamos alinhar o projeto.", reparsed.Content)
}

func TestPostfixSessionProductiveSubjectUntouched(t *testing.T) {
	f, _, sent := newTestPostfixFilter(core.CategoryProductive, nil)

	require.NoError(t, deliver(t, f, "ana@example.com", plainMessage))

	require.Len(t, *sent, 1)
	assert.NotContains(t, string((*sent)[0].data), "IMPRODUTIVO")
	assert.Contains(t, string((*sent)[0].data), "X-Email-Category: produtivo\r\n")
}

func TestPostfixSessionWhitelistedSender(t *testing.T) {
	f, classifier, sent := newTestPostfixFilter(core.CategoryUnproductive, nil, "example.com")

	require.NoError(t, deliver(t, f, "ana@example.com", plainMessage))

	assert.Empty(t, classifier.seen)
	require.Len(t, *sent, 1)
	assert.Equal(t, plainMessage, string((*sent)[0].data))
}

func TestPostfixSessionUnparseableMessagePassesThrough(t *testing.T) {
	f, classifier, sent := newTestPostfixFilter(core.CategoryUnproductive, nil)
	raw := "not a header line\r\n"

	require.NoError(t, deliver(t, f, "x@y.com", raw))

	assert.Empty(t, classifier.seen)
	require.Len(t, *sent, 1)
	assert.Equal(t, raw, string((*sent)[0].data))
}

func TestPostfixSessionForwardFailure(t *testing.T) {
	f, _, _ := newTestPostfixFilter(core.CategoryProductive, errors.New("connection refused"))

	err := deliver(t, f, "ana@example.com", plainMessage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "451")
}

func TestPostfixDefaultSubjectPrefix(t *testing.T) {
	service, _ := newService(core.CategoryUnproductive)
	f := NewPostfixFilter(service, nil, config.ServerConfig{ModifySubject: true}, zap.NewNop())
	assert.Equal(t, "[IMPRODUTIVO] ", f.cfg.SubjectPrefix)
}

func TestCliFilterJSON(t *testing.T) {
	service, _ := newService(core.CategoryUnproductive)
	f := NewCliFilter(service, zap.NewNop(), false, true)
	var out bytes.Buffer
	f.out = &out

	result, err := f.ProcessEmail(context.Background(), &core.EmailInput{Subject: "Oferta", Content: "Ganhe", Sender: "a@b.com"})
	require.NoError(t, err)
	assert.Equal(t, core.CategoryUnproductive, result.Category)

	var report cliReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "improdutivo", report.Category)
	assert.Equal(t, "fallback", report.Route)
	assert.InDelta(t, 0.815, report.Confidence, 1e-9)
	assert.False(t, report.IsProductive)
}

func TestCliFilterText(t *testing.T) {
	service, _ := newService(core.CategoryProductive)
	f := NewCliFilter(service, zap.NewNop(), true, false)
	var out bytes.Buffer
	f.out = &out

	_, err := f.ProcessEmail(context.Background(), &core.EmailInput{Subject: "Reunião", Content: "Projeto", Sender: "a@b.com"})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Category: produtivo\n")
	assert.Contains(t, text, "Confidence: 0.8150\n")
	assert.Contains(t, text, "Content preview:\nProjeto\n")
}
