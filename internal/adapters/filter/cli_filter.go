package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"go.uber.org/zap"
)

// CliFilter classifies a single email and prints the outcome
type CliFilter struct {
	service *core.EmailService
	logger  *zap.Logger
	verbose bool
	asJSON  bool
	out     io.Writer
}

// NewCliFilter creates a new CLI filter writing to stdout
func NewCliFilter(service *core.EmailService, logger *zap.Logger, verbose, asJSON bool) *CliFilter {
	return &CliFilter{
		service: service,
		logger:  logger,
		verbose: verbose,
		asJSON:  asJSON,
		out:     os.Stdout,
	}
}

// cliReport is the --json output
type cliReport struct {
	Subject           string  `json:"subject"`
	Sender            string  `json:"sender"`
	Category          string  `json:"category"`
	Confidence        float64 `json:"confidence_score"`
	IsProductive      bool    `json:"is_productive"`
	Route             string  `json:"route"`
	SuggestedResponse string  `json:"suggested_response"`
	ProcessingTimeMS  int64   `json:"processing_time_ms"`
}

// ProcessEmail classifies an email and prints the results
func (f *CliFilter) ProcessEmail(ctx context.Context, email *core.EmailInput) (*core.EmailResult, error) {
	f.logger.Debug("Processing email", zap.String("sender", email.Sender))

	start := time.Now()
	result := f.service.ProcessEmail(ctx, *email)
	duration := time.Since(start)

	if f.asJSON {
		enc := json.NewEncoder(f.out)
		enc.SetIndent("", "  ")
		err := enc.Encode(cliReport{
			Subject:           email.Subject,
			Sender:            email.Sender,
			Category:          string(result.Category),
			Confidence:        result.Confidence,
			IsProductive:      result.IsProductive,
			Route:             string(result.Route),
			SuggestedResponse: result.SuggestedResponse,
			ProcessingTimeMS:  duration.Milliseconds(),
		})
		if err != nil {
			return result, fmt.Errorf("failed to write result: %w", err)
		}
		return result, nil
	}

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", email.Sender)
	fmt.Fprintf(f.out, "Subject: %s\n", email.Subject)
	fmt.Fprintf(f.out, "Content length: %d bytes\n", len(email.Content))

	if f.verbose {
		preview := []rune(email.Content)
		if len(preview) > 500 {
			preview = append(preview[:500], []rune("...")...)
		}
		fmt.Fprintf(f.out, "\nContent preview:\n%s\n", string(preview))
	}

	fmt.Fprintf(f.out, "\n=== Results ===\n")
	fmt.Fprintf(f.out, "Category: %s\n", result.Category)
	fmt.Fprintf(f.out, "Productive: %t\n", result.IsProductive)
	fmt.Fprintf(f.out, "Confidence: %.4f\n", result.Confidence)
	fmt.Fprintf(f.out, "Route: %s\n", result.Route)
	fmt.Fprintf(f.out, "Suggested response: %s\n", result.SuggestedResponse)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CliFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CliFilter) Stop() error {
	return nil
}
