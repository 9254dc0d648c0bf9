package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// recentLimit is the number of records shown in analytics
const recentLimit = 10

// EmailService is the consumer-facing entry point of the classification engine
type EmailService struct {
	classifier EmailClassifier
	responses  ResponseSelector
	repo       ResultRepository
	logger     *zap.Logger
}

// NewEmailService creates a new email service. repo may be nil, in which case
// Submit behaves like ProcessEmail and history is empty.
func NewEmailService(
	classifier EmailClassifier,
	responses ResponseSelector,
	repo ResultRepository,
	logger *zap.Logger,
) *EmailService {
	return &EmailService{
		classifier: classifier,
		responses:  responses,
		repo:       repo,
		logger:     logger,
	}
}

// ProcessEmail classifies an email and picks a suggested response.
// It always returns a result.
func (s *EmailService) ProcessEmail(ctx context.Context, email EmailInput) *EmailResult {
	decision := s.classifier.Classify(ctx, email)

	result := &EmailResult{
		Category:          decision.Category,
		Confidence:        decision.Confidence,
		SuggestedResponse: s.responses.Select(decision.Category, email.Content),
		IsProductive:      decision.Category == CategoryProductive,
		Route:             decision.Route,
	}

	s.logger.Debug("Classified email",
		zap.String("sender", email.Sender),
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence),
		zap.String("route", string(result.Route)))

	return result
}

// Submit processes an email and stores the outcome. The returned record is
// always populated; a non-nil error only reports that storing it failed.
func (s *EmailService) Submit(ctx context.Context, email EmailInput) (*EmailRecord, error) {
	record := &EmailRecord{
		Input:      email,
		Result:     *s.ProcessEmail(ctx, email),
		ReceivedAt: time.Now(),
	}

	if s.repo == nil {
		return record, nil
	}

	if err := s.repo.Save(ctx, record); err != nil {
		s.logger.Warn("Failed to store email result",
			zap.Error(err),
			zap.String("sender", email.Sender))
		return record, fmt.Errorf("failed to store email result: %w", err)
	}

	return record, nil
}

// History returns the most recent stored records
func (s *EmailService) History(ctx context.Context, limit int) ([]EmailRecord, error) {
	if s.repo == nil {
		return []EmailRecord{}, nil
	}
	return s.repo.Recent(ctx, limit)
}

// Analytics computes category counts and percentages over stored records
func (s *EmailService) Analytics(ctx context.Context) (*Analytics, error) {
	stats := &Analytics{Recent: []EmailRecord{}}
	if s.repo == nil {
		return stats, nil
	}

	total, productive, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count email results: %w", err)
	}

	stats.Total = total
	stats.Productive = productive
	stats.Unproductive = total - productive
	if total > 0 {
		stats.ProductivePercentage = round1(float64(productive) / float64(total) * 100)
		stats.UnproductivePercentage = round1(float64(stats.Unproductive) / float64(total) * 100)
	}

	recent, err := s.repo.Recent(ctx, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent email results: %w", err)
	}
	stats.Recent = recent

	return stats, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
