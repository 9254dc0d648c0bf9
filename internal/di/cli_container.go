package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/logging"
)

// CLIFlags contains the command line flags of the one-shot classifier
type CLIFlags struct {
	// Provider overrides sentiment.provider when set
	Provider   string
	ConfigFile string

	// Input
	InputFile string
	Subject   string
	Content   string
	Sender    string

	// Output
	JSON    bool
	Verbose bool
	JSONLog bool
}

// BuildCLIContainer creates the container of the one-shot CLI: the same engine as
// the daemon with an in-memory cache, no result store and the CLI filter
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(newCLIConfig); err != nil {
		return nil, err
	}

	if err := provideEngine(container); err != nil {
		return nil, err
	}

	// Register cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.SentimentCache, error) {
		return f.CreateSentimentCache()
	}); err != nil {
		return nil, err
	}

	if err := container.Provide(func() core.ResultRepository { return nil }); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	return container, nil
}

// newCLIConfig loads the configuration like the daemon does, then applies the flags
func newCLIConfig(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
	cfg, err := config.NewFromFile(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if used := cfg.GetViper().ConfigFileUsed(); used != "" {
		logger.Debug("Loaded configuration from file", zap.String("file", used))
	}

	v := cfg.GetViper()
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)
	v.Set("cli.json", flags.JSON)
	// a one-shot run never benefits from a persistent cache
	v.Set("cache.type", "memory")
	v.Set("cache.cleanup_frequency", "0s")
	if flags.Provider != "" {
		v.Set("sentiment.provider", flags.Provider)
	}

	return cfg, nil
}
