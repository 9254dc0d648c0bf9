// Package sentiment wraps the external sentiment capability behind a port that
// never fails: every error, timeout, panic or open circuit becomes an
// unavailable reading.
package sentiment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/utils"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	// DefaultMaxLength is the input limit of the multilingual sentiment model
	DefaultMaxLength = 512
	// DefaultTimeout bounds a single model call
	DefaultTimeout = 10 * time.Second

	defaultBreakerFailures = 5
	defaultBreakerCooldown = 30 * time.Second
	defaultCacheTTL        = time.Hour
)

// Options tunes the port
type Options struct {
	// MaxLength is the rune limit applied before calling the model
	MaxLength int
	// Timeout bounds each model call
	Timeout time.Duration
	// CacheTTL is how long answers are cached
	CacheTTL time.Duration
	// BreakerFailures is the number of consecutive failures that opens the circuit
	BreakerFailures uint32
	// BreakerCooldown is how long the circuit stays open before probing again
	BreakerCooldown time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxLength <= 0 {
		o.MaxLength = DefaultMaxLength
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = defaultCacheTTL
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = defaultBreakerFailures
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = defaultBreakerCooldown
	}
	return o
}

// Port implements core.SentimentPort over a core.SentimentModel
type Port struct {
	model   core.SentimentModel
	cache   core.SentimentCache
	text    *utils.TextProcessor
	breaker *gobreaker.CircuitBreaker
	opts    Options
	logger  *zap.Logger
}

// NewPort creates a port around model. cache may be nil.
func NewPort(
	model core.SentimentModel,
	cache core.SentimentCache,
	textProcessor *utils.TextProcessor,
	opts Options,
	logger *zap.Logger,
) *Port {
	opts = opts.withDefaults()
	if textProcessor == nil {
		textProcessor = utils.NewTextProcessor(logger)
	}

	name := "sentiment"
	if model != nil {
		name = "sentiment-" + model.Name()
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Sentiment circuit breaker changed state",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Port{
		model:   model,
		cache:   cache,
		text:    textProcessor,
		breaker: gobreaker.NewCircuitBreaker(settings),
		opts:    opts,
		logger:  logger,
	}
}

// Classify queries the model. It never blocks longer than the configured
// timeout and never returns an error.
func (p *Port) Classify(ctx context.Context, text string) (reading core.SentimentReading) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("Sentiment analysis panicked", zap.Any("panic", r))
			reading = core.Unavailable(fmt.Errorf("sentiment analysis panicked: %v", r))
		}
	}()

	if p.model == nil {
		return core.Unavailable(errors.New("sentiment model not initialized"))
	}

	input := p.text.ProcessText(text, p.opts.MaxLength)
	key := CacheKey(p.model.Name(), input)

	if signal, ok := p.lookup(ctx, key); ok {
		return core.Available(signal)
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
		return p.analyze(callCtx, input)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			p.logger.Debug("Sentiment circuit open, skipping model", zap.String("model", p.model.Name()))
		} else {
			p.logger.Warn("Sentiment analysis failed",
				zap.String("model", p.model.Name()),
				zap.Error(err))
		}
		return core.Unavailable(err)
	}

	signal := result.(core.SentimentSignal)
	p.store(ctx, key, signal)

	return core.Available(signal)
}

// analyze calls the model in its own goroutine so that a model ignoring its
// context still cannot hold the caller past the deadline
func (p *Port) analyze(ctx context.Context, text string) (core.SentimentSignal, error) {
	type answer struct {
		signal *core.SentimentSignal
		err    error
	}

	done := make(chan answer, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- answer{err: fmt.Errorf("sentiment model panicked: %v", r)}
			}
		}()
		signal, err := p.model.Analyze(ctx, text)
		done <- answer{signal: signal, err: err}
	}()

	select {
	case a := <-done:
		if a.err != nil {
			return core.SentimentSignal{}, a.err
		}
		return validate(a.signal)
	case <-ctx.Done():
		return core.SentimentSignal{}, fmt.Errorf("sentiment model timed out: %w", ctx.Err())
	}
}

// validate checks a model answer, deriving the stars from the label when the
// model only returned a label
func validate(signal *core.SentimentSignal) (core.SentimentSignal, error) {
	if signal == nil {
		return core.SentimentSignal{}, errors.New("sentiment model returned no answer")
	}

	s := *signal
	if s.Stars == 0 {
		stars, err := core.ParseStars(s.Label)
		if err != nil {
			return core.SentimentSignal{}, fmt.Errorf("malformed sentiment answer: %w", err)
		}
		s.Stars = stars
	}
	if s.Stars < 1 || s.Stars > 5 {
		return core.SentimentSignal{}, fmt.Errorf("malformed sentiment answer: %d stars", s.Stars)
	}
	if math.IsNaN(s.Score) || s.Score < 0 || s.Score > 1 {
		return core.SentimentSignal{}, fmt.Errorf("malformed sentiment answer: score %v", s.Score)
	}
	if s.Label == "" {
		s.Label = core.StarsLabel(s.Stars)
	}

	return s, nil
}

func (p *Port) lookup(ctx context.Context, key string) (core.SentimentSignal, bool) {
	if p.cache == nil {
		return core.SentimentSignal{}, false
	}

	entry, err := p.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			p.logger.Warn("Failed to read sentiment cache", zap.Error(err))
		}
		return core.SentimentSignal{}, false
	}

	p.logger.Debug("Sentiment cache hit", zap.String("key", key))
	return entry.Signal, true
}

func (p *Port) store(ctx context.Context, key string, signal core.SentimentSignal) {
	if p.cache == nil {
		return
	}

	now := time.Now()
	entry := &core.SentimentCacheEntry{
		Key:       key,
		Signal:    signal,
		CreatedAt: now,
		ExpiresAt: now.Add(p.opts.CacheTTL),
	}
	if err := p.cache.Set(ctx, entry); err != nil {
		p.logger.Warn("Failed to write sentiment cache", zap.Error(err))
	}
}

// CacheKey identifies a model answer by model name and input text
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Unavailable is a port whose capability could not be constructed.
// It answers every query with an unavailable reading.
type Unavailable struct {
	cause error
}

// NewUnavailable creates a permanently unavailable port
func NewUnavailable(cause error) *Unavailable {
	return &Unavailable{cause: cause}
}

// Classify always reports the construction failure
func (u *Unavailable) Classify(context.Context, string) core.SentimentReading {
	return core.Unavailable(u.cause)
}
