// Package video runs the long-running walkthrough video job: the rate
// gate, the submit and poll state machine, and the download into a local
// object reference.
package video

import (
	"context"
	"fmt"
	"time"

	"homedesign/internal/domain"
	"homedesign/internal/infra"
	"homedesign/internal/prompt"
	"homedesign/internal/providers/gemini"
	"homedesign/internal/status"
)

// DefaultPollInterval is the delay between operation status checks.
const DefaultPollInterval = 10 * time.Second

// Provider is the part of gemini.Service the video job needs.
type Provider interface {
	SubmitVideo(ctx context.Context, req gemini.VideoRequest) (*gemini.Operation, error)
	PollVideo(ctx context.Context, op *gemini.Operation) (*gemini.Operation, error)
	DownloadVideo(ctx context.Context, uri string) ([]byte, string, error)
}

type Options struct {
	PollInterval time.Duration
	Sleep        func(ctx context.Context, d time.Duration) error
	Limiter      RateLimiter
	Objects      *ObjectStore
	Logger       *infra.Logger
}

type Generator struct {
	provider Provider
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
	limiter  RateLimiter
	objects  *ObjectStore
	logger   *infra.Logger
}

// NewGenerator builds a Generator. Without a limiter every request is
// allowed; without an object store a private one is created.
func NewGenerator(provider Provider, opts Options) *Generator {
	g := &Generator{
		provider: provider,
		interval: opts.PollInterval,
		sleep:    opts.Sleep,
		limiter:  opts.Limiter,
		objects:  opts.Objects,
		logger:   infra.OrNop(opts.Logger),
	}
	if g.interval <= 0 {
		g.interval = DefaultPollInterval
	}
	if g.sleep == nil {
		g.sleep = sleepContext
	}
	if g.limiter == nil {
		g.limiter = unlimited{}
	}
	if g.objects == nil {
		g.objects = NewObjectStore()
	}
	return g
}

func (g *Generator) Objects() *ObjectStore {
	return g.objects
}

// Generate returns an object reference for the walkthrough video of brief.
// When the rate gate is closed it reports the skip and returns an empty
// reference with a nil error.
func (g *Generator) Generate(ctx context.Context, brief string, sink status.Sink) (string, error) {
	if sink == nil {
		sink = status.Discard
	}
	decision, err := g.limiter.TryAcquire(ctx)
	if err != nil {
		return "", fmt.Errorf("video rate gate: %w", err)
	}
	if !decision.Allowed {
		g.logger.Info().Dur("remaining", decision.Remaining).Msg("video: skipped by rate gate")
		sink.Report(status.StageVideo, SkipMessage(decision.Remaining))
		return "", nil
	}

	sink.Report(status.StageVideo, MessageStarting)
	ref, err := g.run(ctx, prompt.Video(brief), sink)
	if err != nil {
		return "", err
	}
	if err := g.limiter.Record(ctx); err != nil {
		g.logger.Warn().Err(err).Msg("video: failed to record generation time")
	}
	return ref, nil
}

type job struct {
	state State
	op    *gemini.Operation
	ticks int
	err   error
}

func (j *job) fail(err error) {
	j.state = StateFailed
	j.err = err
}

func (g *Generator) run(ctx context.Context, videoPrompt string, sink status.Sink) (string, error) {
	j := &job{state: StateSubmitted}
	for {
		switch j.state {
		case StateSubmitted:
			op, err := g.provider.SubmitVideo(ctx, gemini.VideoRequest{Prompt: videoPrompt})
			if err != nil {
				j.fail(fmt.Errorf("submit video: %w", err))
				continue
			}
			g.logger.Debug().Str("operation", op.Name).Msg("video: submitted")
			j.op = op
			j.state = StatePolling

		case StatePolling:
			if j.op.Err != nil {
				j.fail(j.op.Err)
				continue
			}
			if j.op.Done {
				j.state = StateDone
				continue
			}
			sink.Report(status.StageVideo, CarouselMessage(j.ticks))
			j.ticks++
			if err := g.sleep(ctx, g.interval); err != nil {
				j.fail(err)
				continue
			}
			op, err := g.provider.PollVideo(ctx, j.op)
			if err != nil {
				j.fail(fmt.Errorf("poll video: %w", err))
				continue
			}
			j.op = op

		case StateDone:
			g.logger.Info().Str("operation", j.op.Name).Int("polls", j.ticks).Msg("video: operation complete")
			sink.Report(status.StageVideo, MessageComplete)
			return g.fetch(ctx, j.op)

		case StateFailed:
			g.logger.Error().Err(j.err).Int("polls", j.ticks).Msg("video: operation failed")
			return "", j.err
		}
	}
}

func (g *Generator) fetch(ctx context.Context, op *gemini.Operation) (string, error) {
	if len(op.VideoData) > 0 {
		return g.objects.Put(op.VideoData, mimeOrDefault(op.MIMEType)), nil
	}
	if op.VideoURI == "" {
		return "", domain.ErrMissingVideoURI
	}
	data, mime, err := g.provider.DownloadVideo(ctx, op.VideoURI)
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}
	return g.objects.Put(data, mimeOrDefault(mime, op.MIMEType)), nil
}

func mimeOrDefault(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return "video/mp4"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type unlimited struct{}

func (unlimited) TryAcquire(context.Context) (Decision, error) { return Decision{Allowed: true}, nil }
func (unlimited) Record(context.Context) error                 { return nil }
