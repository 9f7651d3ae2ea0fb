// Package pipeline turns a URL into a summary: it validates the URL, loads
// its content, builds the prompt and asks the summarization endpoint.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"tldrgram/internal/config"
	"tldrgram/internal/domain"
	"tldrgram/internal/loader"
	"tldrgram/internal/prompt"
	"tldrgram/internal/summarizer"
	"tldrgram/internal/validator"
)

type Pipeline struct {
	mu         sync.Mutex
	loader     loader.Loader
	summarizer summarizer.Summarizer
	observers  []Observer
	log        *slog.Logger
	state      State
}

type Option func(*Pipeline)

func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, o)
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// New wires a pipeline from ready-made components. A blank credential is
// rejected before anything else; missing components fail as endpoint init errors.
func New(
	cfg config.Config,
	l loader.Loader,
	s summarizer.Summarizer,
	opts ...Option,
) (*Pipeline, error) {
	if cfg.Credential.Blank() {
		return nil, initError(domain.ErrMissingCredential)
	}

	if l == nil {
		return nil, initError(fmt.Errorf("%w: loader is nil", domain.ErrEndpointInitFailed))
	}

	if s == nil {
		return nil, initError(fmt.Errorf("%w: summarizer is nil", domain.ErrEndpointInitFailed))
	}

	p := newPipeline(opts)
	p.loader = l
	p.summarizer = s

	return p, nil
}

// Open builds the default loader and the configured summarizer.
func Open(cfg config.Config, opts ...Option) (*Pipeline, error) {
	if cfg.Credential.Blank() {
		return nil, initError(domain.ErrMissingCredential)
	}

	p := newPipeline(opts)

	s, err := summarizer.New(cfg.LLM, cfg.Credential)
	if err != nil {
		return nil, initError(err)
	}

	p.loader = loader.New(cfg, p.log)
	p.summarizer = s

	return p, nil
}

// Run summarizes a single URL with the default configuration and the given credential.
func Run(
	ctx context.Context,
	rawURL string,
	credential domain.Credential,
	opts ...Option,
) (domain.Summary, error) {
	cfg := config.Default()
	cfg.Credential = credential

	p, err := Open(cfg, opts...)
	if err != nil {
		return "", err
	}

	return p.Run(ctx, rawURL)
}

func newPipeline(opts []Option) *Pipeline {
	p := &Pipeline{
		log:   slog.Default(),
		state: StateIdle,
	}

	for _, opt := range opts {
		opt(p)
	}

	p.observers = append([]Observer{logObserver{log: p.log}}, p.observers...)

	return p
}

// Run executes one validate, load, prompt and summarize cycle. Concurrent
// calls are serialized. Exactly one of the results is non-zero.
func (p *Pipeline) Run(ctx context.Context, rawURL string) (domain.Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	p.state = StateIdle

	summary, err := p.run(ctx, rawURL)
	if err != nil {
		p.transition(StateFailed)

		var pipelineErr *Error
		if errors.As(err, &pipelineErr) && pipelineErr.Kind == KindInvalidURL {
			p.log.WarnContext(ctx, "Rejected invalid URL",
				"url", rawURL)
		} else {
			p.log.ErrorContext(ctx, "Failed to summarize URL",
				"url", rawURL,
				"error", err,
				"duration", time.Since(start))
		}

		return "", err
	}

	p.transition(StateDone)

	p.log.InfoContext(ctx, "URL is summarized",
		"url", rawURL,
		"summaryLen", len(summary),
		"duration", time.Since(start))

	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, rawURL string) (domain.Summary, error) {
	p.transition(StateValidating)

	if !validator.IsValid(rawURL) {
		return "", newError(KindInvalidURL, StateValidating, nil, domain.ErrInvalidURL)
	}

	target := validator.Classify(rawURL)

	p.transition(StateLoading)

	docs, err := p.loader.Load(ctx, target)
	if err != nil {
		return "", newError(KindContentUnavailable, StateLoading, err, domain.ErrContentUnavailable)
	}

	p.log.DebugContext(ctx, "Content is loaded",
		"url", target.Raw,
		"kind", target.Kind,
		"documents", len(docs))

	p.transition(StatePrompting)

	pr := prompt.Build(docs)

	p.transition(StateSummarizing)

	summary, err := p.summarizer.Summarize(ctx, pr)
	if err != nil {
		return "", newError(KindEndpointUnavailable, StateSummarizing, err, domain.ErrEndpointUnavailable)
	}

	if summary == "" {
		return "", newError(KindEndpointUnavailable, StateSummarizing, nil, domain.ErrEndpointUnavailable)
	}

	return summary, nil
}

func (p *Pipeline) transition(to State) {
	from := p.state
	p.state = to

	for _, o := range p.observers {
		o.OnTransition(from, to)
	}
}
