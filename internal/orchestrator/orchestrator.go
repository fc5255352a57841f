// Package orchestrator sequences the generators into one design package
// and narrates progress through a status.Sink.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"homedesign/internal/domain"
	"homedesign/internal/infra"
	"homedesign/internal/prompt"
	"homedesign/internal/status"
)

// Progress messages in the order a successful run reports them.
const (
	MsgBrief          = "Crafting the perfect design brief..."
	MsgContentStart   = "Generating textual descriptions..."
	MsgContentDone    = "Descriptions and shopping list are ready!"
	MsgImagesStart    = "Generating photorealistic images..."
	MsgImagesDone     = "Images generated successfully!"
	MsgPlan2DStart    = "Designing the 2D blueprint..."
	MsgPlan3DStart    = "Architecting the 3D floor plan..."
	MsgPlansDone      = "Floor plans are complete!"
	MsgFinalizing     = "Assembling your complete design package..."
	userMessagePrefix = "Failed to generate design."
)

// ContentGenerators produces every asset except the video.
type ContentGenerators interface {
	WalkthroughScript(ctx context.Context, brief string) (string, error)
	ShoppingList(ctx context.Context, brief string) ([]domain.ShoppingListItem, error)
	Images(ctx context.Context, brief string) ([]string, error)
	Plan2D(ctx context.Context, brief string) (domain.Plan, error)
	Plan3D(ctx context.Context, brief string) (domain.Plan, error)
}

// VideoGenerator returns an empty reference and nil error when the video
// is withheld by its rate gate.
type VideoGenerator interface {
	Generate(ctx context.Context, brief string, sink status.Sink) (string, error)
}

// RunError reports the stage at which a run was aborted.
type RunError struct {
	Stage string
	Err   error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("generate design: %s: %v", e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// UserMessage is the single message shown for a failed run.
func (e *RunError) UserMessage() string {
	return userMessagePrefix + " " + e.Err.Error()
}

// UserMessage renders any run failure for display.
func UserMessage(err error) string {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.UserMessage()
	}
	return userMessagePrefix + " " + err.Error()
}

type Orchestrator struct {
	content ContentGenerators
	video   VideoGenerator
	logger  *infra.Logger
}

func New(content ContentGenerators, video VideoGenerator, logger *infra.Logger) *Orchestrator {
	return &Orchestrator{content: content, video: video, logger: infra.OrNop(logger)}
}

// Generate runs one full generation. The first failing step aborts the
// run and no partial package is returned.
func (o *Orchestrator) Generate(ctx context.Context, spec domain.HouseSpec, sink status.Sink) (*domain.DesignPackage, error) {
	if sink == nil {
		sink = status.Discard
	}
	started := time.Now()

	spec = spec.Clone()
	spec.Normalize()
	if err := spec.Validate(); err != nil {
		return nil, &RunError{Stage: status.StageInitialization, Err: err}
	}
	brief := prompt.Build(spec)
	sink.Report(status.StageInitialization, MsgBrief)

	pkg := &domain.DesignPackage{}

	sink.Report(status.StageContent, MsgContentStart)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		script, err := o.content.WalkthroughScript(gctx, brief)
		if err != nil {
			return err
		}
		pkg.WalkthroughScript = script
		return nil
	})
	group.Go(func() error {
		items, err := o.content.ShoppingList(gctx, brief)
		if err != nil {
			return err
		}
		pkg.ShoppingList = items
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, o.abort(status.StageContent, err)
	}
	sink.Report(status.StageContent, MsgContentDone)

	sink.Report(status.StageImages, MsgImagesStart)
	images, err := o.content.Images(ctx, brief)
	if err != nil {
		return nil, o.abort(status.StageImages, err)
	}
	pkg.Images = images
	sink.Report(status.StageImages, MsgImagesDone)

	sink.Report(status.StageFloorPlans, MsgPlan2DStart)
	if pkg.Plan2D, err = o.content.Plan2D(ctx, brief); err != nil {
		return nil, o.abort(status.StageFloorPlans, err)
	}
	sink.Report(status.StageFloorPlans, MsgPlan3DStart)
	if pkg.Plan3D, err = o.content.Plan3D(ctx, brief); err != nil {
		return nil, o.abort(status.StageFloorPlans, err)
	}
	sink.Report(status.StageFloorPlans, MsgPlansDone)

	if pkg.VideoURL, err = o.video.Generate(ctx, brief, sink); err != nil {
		return nil, o.abort(status.StageVideo, err)
	}

	sink.Report(status.StageFinalizing, MsgFinalizing)
	if pkg.ShoppingList == nil {
		pkg.ShoppingList = []domain.ShoppingListItem{}
	}

	o.logger.Info().
		Bool("video", pkg.HasVideo()).
		Int("shopping_items", len(pkg.ShoppingList)).
		Dur("elapsed", time.Since(started)).
		Msg("orchestrator: design package ready")
	return pkg, nil
}

func (o *Orchestrator) abort(stage string, err error) error {
	o.logger.Error().Err(err).Str("stage", stage).Msg("orchestrator: run failed")
	return &RunError{Stage: stage, Err: err}
}
