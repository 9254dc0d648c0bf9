package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/filter"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/di"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/ports"
)

func main() {
	flags := &di.CLIFlags{}

	rootCmd := &cobra.Command{
		Use:   "classify-email",
		Short: "Classify one email as produtivo or improdutivo",
		Long: `classify-email reads an RFC 5322 message from --file or stdin, or takes
the fields directly from --subject, --content and --sender, and prints the
category, confidence and suggested response.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return classify(cmd, flags)
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&flags.InputFile, "file", "", "input email file (stdin if no fields are given)")
	f.StringVar(&flags.Subject, "subject", "", "email subject, overrides the parsed message")
	f.StringVar(&flags.Content, "content", "", "email body, overrides the parsed message")
	f.StringVar(&flags.Sender, "sender", "", "email sender, overrides the parsed message")
	f.StringVar(&flags.Provider, "provider", "", "sentiment provider (huggingface, openai, gemini, bedrock, none)")
	f.StringVar(&flags.ConfigFile, "config", "", "config file (default searches /etc/email-triage, $HOME/.email-triage, ./configs)")
	f.BoolVar(&flags.JSON, "json", false, "print the result as JSON")
	f.BoolVar(&flags.Verbose, "verbose", false, "enable debug logging and a content preview")
	f.BoolVar(&flags.JSONLog, "json-log", false, "output logs in JSON format")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func classify(cmd *cobra.Command, flags *di.CLIFlags) error {
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	return container.Invoke(func(logger *zap.Logger, emailFilter ports.EmailFilter, closers *factory.Closers) error {
		defer logger.Sync()
		defer closers.Close()

		email, err := readInput(cmd.InOrStdin(), flags, logger)
		if err != nil {
			return err
		}

		_, err = emailFilter.ProcessEmail(context.Background(), email)
		return err
	})
}

// readInput builds the email from the message source and the field flags.
// Field flags win over parsed values; stdin is only read when no field is set.
// An email without subject and content is still classified.
func readInput(stdin io.Reader, flags *di.CLIFlags, logger *zap.Logger) (*core.EmailInput, error) {
	email := &core.EmailInput{}

	var src io.Reader
	switch {
	case flags.InputFile != "":
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		src = file
		logger.Debug("Reading email from file", zap.String("file", flags.InputFile))
	case flags.Subject == "" && flags.Content == "" && flags.Sender == "":
		src = stdin
		logger.Debug("Reading email from stdin")
	}

	if src != nil {
		parsed, err := filter.ParseMessage(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse email: %w", err)
		}
		email.Subject = parsed.Subject
		email.Content = parsed.Content
		email.Sender = parsed.From
	}

	if flags.Subject != "" {
		email.Subject = flags.Subject
	}
	if flags.Content != "" {
		email.Content = flags.Content
	}
	if flags.Sender != "" {
		email.Sender = flags.Sender
	}

	return email, nil
}
