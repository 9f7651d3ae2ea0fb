// Command summarize prints the summary of a single URL.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"tldrgram/internal/config"
	"tldrgram/internal/pipeline"

	"github.com/spf13/cobra"
)

// errReported means the failure was already written to the output.
var errReported = errors.New("reported")

type options struct {
	json    bool
	verbose bool
	model   string
	format  string
}

type result struct {
	URL     string `json:"url"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			_, _ = fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "summarize <url>",
		Short: "Summarize a web page or a YouTube video",
		Long: `summarize loads the content behind a URL and asks the configured
text-generation endpoint for a short summary.

The endpoint token is read from HF_API_TOKEN. Other settings use the same
environment variables as the bot (LLM_*, WEB_*, YOUTUBE_*).

Example usage:
  summarize https://go.dev/doc/effective_go
  summarize --json "https://www.youtube.com/watch?v=dQw4w9WgXcQ"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], opts, stdout, stderr)
		},
	}

	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline progress to stderr")
	cmd.Flags().StringVar(&opts.model, "model", "", "override LLM_MODEL")
	cmd.Flags().StringVar(&opts.format, "format", "", "page text format: text or markdown (overrides WEB_FORMAT)")

	return cmd
}

func run(cmd *cobra.Command, rawURL string, opts *options, stdout io.Writer, stderr io.Writer) error {
	logLevel := slog.LevelWarn
	if opts.verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if opts.model != "" {
		cfg.LLM.Model = opts.model
	}

	if opts.format != "" {
		cfg.Web.Format = opts.format
		if err = cfg.Validate(); err != nil {
			return fmt.Errorf("validate flags: %w", err)
		}
	}

	if cfg.Web.InsecureSkipVerify {
		log.Warn("TLS certificate verification is disabled for web pages",
			"envVar", "WEB_INSECURE_SKIP_VERIFY")
	}

	p, err := pipeline.Open(cfg, pipeline.WithLogger(log))
	if err != nil {
		return report(stdout, stderr, opts.json, rawURL, err)
	}

	summary, err := p.Run(cmd.Context(), rawURL)
	if err != nil {
		return report(stdout, stderr, opts.json, rawURL, err)
	}

	if opts.json {
		return writeJSON(stdout, result{URL: rawURL, Summary: string(summary)})
	}

	_, err = fmt.Fprintln(stdout, summary)
	return err
}

func report(stdout io.Writer, stderr io.Writer, asJSON bool, rawURL string, runErr error) error {
	if asJSON {
		res := result{URL: rawURL, Error: pipeline.UserMessage(runErr)}

		var pipelineErr *pipeline.Error
		if errors.As(runErr, &pipelineErr) {
			res.Kind = pipelineErr.Kind.String()
		}

		if err := writeJSON(stdout, res); err != nil {
			return errors.Join(runErr, err)
		}

		return errReported
	}

	if _, err := fmt.Fprintln(stderr, pipeline.UserMessage(runErr)); err != nil {
		return errors.Join(runErr, err)
	}

	return errReported
}

func writeJSON(w io.Writer, res result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	return nil
}
