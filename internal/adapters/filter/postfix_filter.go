package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/whitelist"
	"go.uber.org/zap"
)

// classifyTimeout bounds the classification of one message
const classifyTimeout = 15 * time.Second

// PostfixFilter implements a Postfix content filter: mail received over SMTP is
// classified, annotated with headers and re-injected into Postfix.
type PostfixFilter struct {
	service   *core.EmailService
	whitelist *whitelist.Checker
	logger    *zap.Logger
	cfg       config.ServerConfig
	server    *smtp.Server

	// forward re-injects a message; sendToPostfix unless replaced in tests
	forward func(sender string, recipients []string, data []byte) error
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.EmailService,
	checker *whitelist.Checker,
	cfg config.ServerConfig,
	logger *zap.Logger,
) *PostfixFilter {
	if cfg.ModifySubject && cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "[IMPRODUTIVO] "
	}
	if checker == nil {
		checker = whitelist.NewChecker(nil, logger)
	}

	f := &PostfixFilter{
		service:   service,
		whitelist: checker,
		logger:    logger,
		cfg:       cfg,
	}
	f.forward = f.sendToPostfix
	return f
}

// Start starts the SMTP listener
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("Postfix filter starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail classifies an email without any SMTP handling
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.EmailInput) (*core.EmailResult, error) {
	return f.service.ProcessEmail(ctx, *email), nil
}

// filterMessage turns a received message into the message to re-inject.
// Whitelisted senders and unparseable messages pass through unchanged.
func (f *PostfixFilter) filterMessage(sender string, raw []byte) []byte {
	if f.whitelist.IsWhitelisted(sender) {
		f.logger.Info("Skipping classification for whitelisted sender", zap.String("sender", sender))
		return raw
	}

	parsed, err := ParseMessage(bytes.NewReader(raw))
	if err != nil {
		f.logger.Warn("Failed to parse message, forwarding unchanged",
			zap.Error(err),
			zap.String("sender", sender))
		return raw
	}

	from := parsed.From
	if from == "" {
		from = sender
	}
	if from != sender && f.whitelist.IsWhitelisted(from) {
		f.logger.Info("Skipping classification for whitelisted sender", zap.String("sender", from))
		return raw
	}

	ctx, cancel := context.WithTimeout(context.Background(), classifyTimeout)
	defer cancel()

	result := f.service.ProcessEmail(ctx, core.EmailInput{
		Subject: parsed.Subject,
		Content: parsed.Content,
		Sender:  from,
	})

	annotation := Annotation{
		CategoryHeader:    f.cfg.Headers.Category,
		ConfidenceHeader:  f.cfg.Headers.Confidence,
		ResponseHeader:    f.cfg.Headers.Response,
		Category:          string(result.Category),
		Confidence:        result.Confidence,
		SuggestedResponse: result.SuggestedResponse,
	}
	if f.cfg.ModifySubject && !result.IsProductive {
		annotation.SubjectPrefix = f.cfg.SubjectPrefix
	}

	annotated, err := AnnotateMessage(raw, annotation)
	if err != nil {
		f.logger.Warn("Failed to annotate message, forwarding unchanged",
			zap.Error(err),
			zap.String("sender", from))
		return raw
	}

	f.logger.Info("Classified email",
		zap.String("sender", from),
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence),
		zap.String("route", string(result.Route)))

	return annotated
}

// sendToPostfix sends the processed email back to Postfix on the configured port
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	if !f.cfg.Postfix.Enabled {
		f.logger.Warn("Postfix forwarding disabled, dropping filtered message", zap.String("sender", sender))
		return nil
	}

	postfixAddr := net.JoinHostPort(f.cfg.Postfix.Address, fmt.Sprintf("%d", f.cfg.Postfix.Port))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		// the message is already accepted
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies and re-injects the message. Only transport failures fail
// the transaction.
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Warn("Failed to read message data", zap.Error(err))
		return err
	}

	filtered := s.filter.filterMessage(s.sender, raw)

	if err := s.filter.forward(s.sender, s.recipients, filtered); err != nil {
		s.filter.logger.Error("Failed to send email back to Postfix",
			zap.Error(err),
			zap.String("sender", s.sender))
		return &smtp.SMTPError{
			Code:         451,
			EnhancedCode: smtp.EnhancedCode{4, 3, 0},
			Message:      "Temporary failure re-injecting message",
		}
	}

	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}
