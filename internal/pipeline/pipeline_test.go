package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"tldrgram/internal/config"
	"tldrgram/internal/domain"
	"tldrgram/internal/loader"
	"tldrgram/internal/pipeline"
	"tldrgram/internal/summarizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	mu      sync.Mutex
	docs    []domain.Document
	err     error
	targets []domain.TargetURL
}

func (l *stubLoader) Load(_ context.Context, target domain.TargetURL) ([]domain.Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.targets = append(l.targets, target)
	if l.err != nil {
		return nil, l.err
	}

	return l.docs, nil
}

func (l *stubLoader) calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.targets)
}

type stubSummarizer struct {
	mu      sync.Mutex
	summary domain.Summary
	err     error
	prompts []domain.Prompt
}

func (s *stubSummarizer) Summarize(_ context.Context, p domain.Prompt) (domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, p)
	if s.err != nil {
		return "", s.err
	}

	return s.summary, nil
}

func (s *stubSummarizer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.prompts)
}

type transition struct {
	From pipeline.State
	To   pipeline.State
}

type recorder struct {
	transitions []transition
}

func (r *recorder) OnTransition(from pipeline.State, to pipeline.State) {
	r.transitions = append(r.transitions, transition{From: from, To: to})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Credential = "hf_test"
	return cfg
}

func newPipeline(t *testing.T, l loader.Loader, s *stubSummarizer, opts ...pipeline.Option) *pipeline.Pipeline {
	t.Helper()

	p, err := pipeline.New(testConfig(), l, s, append([]pipeline.Option{pipeline.WithLogger(discardLogger())}, opts...)...)
	require.NoError(t, err)

	return p
}

func requireKind(t *testing.T, err error, kind pipeline.Kind) *pipeline.Error {
	t.Helper()

	var pipelineErr *pipeline.Error
	require.ErrorAs(t, err, &pipelineErr)
	assert.Equal(t, kind, pipelineErr.Kind)

	return pipelineErr
}

func TestRunSummarizesArticle(t *testing.T) {
	l := &stubLoader{docs: []domain.Document{{Content: "Hello world."}}}
	s := &stubSummarizer{summary: "A greeting."}
	rec := &recorder{}

	summary, err := newPipeline(t, l, s, pipeline.WithObserver(rec)).
		Run(context.Background(), "https://example.com/article")
	require.NoError(t, err)
	assert.Equal(t, domain.Summary("A greeting."), summary)

	require.Len(t, s.prompts, 1)
	assert.Equal(t,
		domain.Prompt("\nProvide a summary of the following content in 300 words:\nContent: Hello world.\n"),
		s.prompts[0])

	require.Len(t, l.targets, 1)
	assert.Equal(t, domain.KindGeneric, l.targets[0].Kind)

	assert.Equal(t, []transition{
		{pipeline.StateIdle, pipeline.StateValidating},
		{pipeline.StateValidating, pipeline.StateLoading},
		{pipeline.StateLoading, pipeline.StatePrompting},
		{pipeline.StatePrompting, pipeline.StateSummarizing},
		{pipeline.StateSummarizing, pipeline.StateDone},
	}, rec.transitions)
}

func TestRunRejectsInvalidURL(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"not a url",
		"ftp://example.com/file",
		"https://",
		"https://exa mple.com",
		"javascript:alert(1)",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			l := &stubLoader{docs: []domain.Document{{Content: "x"}}}
			s := &stubSummarizer{summary: "x"}
			rec := &recorder{}

			summary, err := newPipeline(t, l, s, pipeline.WithObserver(rec)).Run(context.Background(), raw)
			assert.Empty(t, summary)

			pipelineErr := requireKind(t, err, pipeline.KindInvalidURL)
			assert.Equal(t, pipeline.StateValidating, pipelineErr.State)
			assert.False(t, pipelineErr.Fatal())
			assert.ErrorIs(t, err, domain.ErrInvalidURL)
			assert.Equal(t, "Invalid URL. Please enter a valid YouTube or website URL.", pipelineErr.UserMessage())

			assert.Zero(t, l.calls())
			assert.Zero(t, s.calls())
			assert.Equal(t, []transition{
				{pipeline.StateIdle, pipeline.StateValidating},
				{pipeline.StateValidating, pipeline.StateFailed},
			}, rec.transitions)
		})
	}
}

func TestRunRoutesYouTubeURLs(t *testing.T) {
	web := &stubLoader{docs: []domain.Document{{Content: "page"}}}
	yt := &stubLoader{docs: []domain.Document{{Content: "transcript"}}}
	s := &stubSummarizer{summary: "ok"}

	p := newPipeline(t, loader.NewRouter(web, yt), s)

	_, err := p.Run(context.Background(), "https://www.youtube.com/watch?v=abc123")
	require.NoError(t, err)
	_, err = p.Run(context.Background(), "https://example.com/article")
	require.NoError(t, err)

	require.Equal(t, 1, yt.calls())
	require.Equal(t, 1, web.calls())
	assert.Equal(t, domain.KindYouTube, yt.targets[0].Kind)
	assert.Contains(t, string(s.prompts[0]), "Content: transcript")
	assert.Contains(t, string(s.prompts[1]), "Content: page")
}

func TestRunLoaderFailure(t *testing.T) {
	l := &stubLoader{err: errors.New("video has been removed")}
	s := &stubSummarizer{summary: "never"}

	var failedFrom []pipeline.State
	observer := pipeline.ObserverFunc(func(from pipeline.State, to pipeline.State) {
		if to == pipeline.StateFailed {
			failedFrom = append(failedFrom, from)
		}
	})

	summary, err := newPipeline(t, l, s, pipeline.WithObserver(observer)).
		Run(context.Background(), "https://www.youtube.com/watch?v=abc123")
	assert.Empty(t, summary)
	assert.Equal(t, []pipeline.State{pipeline.StateLoading}, failedFrom)

	pipelineErr := requireKind(t, err, pipeline.KindContentUnavailable)
	assert.Equal(t, pipeline.StateLoading, pipelineErr.State)
	assert.ErrorIs(t, err, domain.ErrContentUnavailable)
	assert.Contains(t, pipelineErr.UserMessage(), "video has been removed")
	assert.Zero(t, s.calls())
}

func TestRunSummarizerFailure(t *testing.T) {
	l := &stubLoader{docs: []domain.Document{{Content: "Hello world."}}}
	s := &stubSummarizer{err: errors.New("401 Unauthorized")}

	summary, err := newPipeline(t, l, s).Run(context.Background(), "https://example.com/article")
	assert.Empty(t, summary)

	pipelineErr := requireKind(t, err, pipeline.KindEndpointUnavailable)
	assert.Equal(t, pipeline.StateSummarizing, pipelineErr.State)
	assert.ErrorIs(t, err, domain.ErrEndpointUnavailable)
	assert.False(t, pipelineErr.Fatal())
}

func TestRunEmptySummary(t *testing.T) {
	l := &stubLoader{docs: []domain.Document{{Content: "Hello world."}}}
	s := &stubSummarizer{summary: ""}

	_, err := newPipeline(t, l, s).Run(context.Background(), "https://example.com/article")
	requireKind(t, err, pipeline.KindEndpointUnavailable)
}

func TestRunKeepsSentinelWrapping(t *testing.T) {
	loadErr := errors.Join(domain.ErrContentUnavailable, errors.New("HTTP 404"))
	l := &stubLoader{err: loadErr}

	_, err := newPipeline(t, l, &stubSummarizer{}).Run(context.Background(), "https://example.com/missing")

	pipelineErr := requireKind(t, err, pipeline.KindContentUnavailable)
	assert.Equal(t, loadErr, pipelineErr.Err)
}

func TestRunSerializesConcurrentCalls(t *testing.T) {
	var active, maxActive atomic.Int32

	l := loaderFunc(func(context.Context, domain.TargetURL) ([]domain.Document, error) {
		n := active.Add(1)
		defer active.Add(-1)

		for {
			current := maxActive.Load()
			if n <= current || maxActive.CompareAndSwap(current, n) {
				break
			}
		}

		time.Sleep(10 * time.Millisecond)
		return []domain.Document{{Content: "text"}}, nil
	})

	p := newPipeline(t, l, &stubSummarizer{summary: "ok"})

	var wg sync.WaitGroup
	for range 5 {
		wg.Go(func() {
			_, err := p.Run(context.Background(), "https://example.com/article")
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
}

type loaderFunc func(ctx context.Context, target domain.TargetURL) ([]domain.Document, error)

func (f loaderFunc) Load(ctx context.Context, target domain.TargetURL) ([]domain.Document, error) {
	return f(ctx, target)
}

func TestNewRejectsBlankCredential(t *testing.T) {
	l := &stubLoader{}
	s := &stubSummarizer{}

	cfg := config.Default()
	cfg.Credential = "  "

	p, err := pipeline.New(cfg, l, s)
	assert.Nil(t, p)

	pipelineErr := requireKind(t, err, pipeline.KindMissingCredential)
	assert.True(t, pipelineErr.Fatal())
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Equal(t, "Hugging Face API Token is required.", pipelineErr.UserMessage())
	assert.Zero(t, l.calls())
	assert.Zero(t, s.calls())
}

func TestNewRejectsMissingComponents(t *testing.T) {
	tests := []struct {
		name string
		l    loader.Loader
		s    summarizer.Summarizer
	}{
		{"Nil loader", nil, &stubSummarizer{}},
		{"Nil summarizer", &stubLoader{}, nil},
		{"Both nil", nil, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p, err := pipeline.New(testConfig(), test.l, test.s)
			assert.Nil(t, p)

			pipelineErr := requireKind(t, err, pipeline.KindEndpointInitFailed)
			assert.True(t, pipelineErr.Fatal())
			assert.ErrorIs(t, err, domain.ErrEndpointInitFailed)
		})
	}
}

func TestPackageRunInitErrors(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	tests := []struct {
		name       string
		credential domain.Credential
		kind       pipeline.Kind
		sentinel   error
	}{
		{"Blank credential", "", pipeline.KindMissingCredential, domain.ErrMissingCredential},
		{"Malformed credential", "hf token", pipeline.KindEndpointInitFailed, domain.ErrEndpointInitFailed},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			summary, err := pipeline.Run(context.Background(), srv.URL, test.credential,
				pipeline.WithLogger(discardLogger()))
			assert.Empty(t, summary)

			pipelineErr := requireKind(t, err, test.kind)
			assert.True(t, pipelineErr.Fatal())
			assert.ErrorIs(t, err, test.sentinel)
		})
	}

	assert.Zero(t, requests.Load())
}

func TestUserMessageForForeignError(t *testing.T) {
	assert.Equal(t, "Exception: boom", pipeline.UserMessage(errors.New("boom")))
}
