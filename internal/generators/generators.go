// Package generators turns a design brief into the individual assets of a
// design package. Every generator is independent of the others' output.
package generators

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"homedesign/internal/domain"
	"homedesign/internal/infra"
	"homedesign/internal/prompt"
	"homedesign/internal/providers/gemini"
)

const (
	AspectWide     = "16:9"
	AspectStandard = "4:3"
)

type Generators struct {
	provider gemini.Service
	logger   *infra.Logger
}

func New(provider gemini.Service, logger *infra.Logger) *Generators {
	return &Generators{provider: provider, logger: infra.OrNop(logger)}
}

// WalkthroughScript returns the narrated tour text exactly as produced.
func (g *Generators) WalkthroughScript(ctx context.Context, brief string) (string, error) {
	text, err := g.provider.GenerateText(ctx, gemini.TextRequest{Prompt: prompt.WalkthroughScript(brief)})
	if err != nil {
		return "", fmt.Errorf("walkthrough script: %w", err)
	}
	return text, nil
}

// Images returns [exterior, interior] as data URLs. Both are requested
// concurrently and either failure fails the pair.
func (g *Generators) Images(ctx context.Context, brief string) ([]string, error) {
	images := make([]string, 2)
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		ref, err := g.singleImage(gctx, prompt.ExteriorImage(brief), AspectWide)
		if err != nil {
			return fmt.Errorf("exterior image: %w", err)
		}
		images[domain.ImageExterior] = ref
		return nil
	})
	group.Go(func() error {
		ref, err := g.singleImage(gctx, prompt.InteriorImage(brief), AspectWide)
		if err != nil {
			return fmt.Errorf("interior image: %w", err)
		}
		images[domain.ImageInterior] = ref
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return images, nil
}

func (g *Generators) Plan2D(ctx context.Context, brief string) (domain.Plan, error) {
	plan, err := g.plan(ctx, prompt.Plan2DDescription(brief), prompt.Plan2DImage(brief), AspectStandard)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("2D plan: %w", err)
	}
	return plan, nil
}

func (g *Generators) Plan3D(ctx context.Context, brief string) (domain.Plan, error) {
	plan, err := g.plan(ctx, prompt.Plan3DDescription(brief), prompt.Plan3DImage(brief), AspectWide)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("3D plan: %w", err)
	}
	return plan, nil
}

func (g *Generators) plan(ctx context.Context, descriptionPrompt, imagePrompt, aspect string) (domain.Plan, error) {
	var plan domain.Plan
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		text, err := g.provider.GenerateText(gctx, gemini.TextRequest{Prompt: descriptionPrompt})
		if err != nil {
			return fmt.Errorf("description: %w", err)
		}
		plan.Description = text
		return nil
	})
	group.Go(func() error {
		ref, err := g.singleImage(gctx, imagePrompt, aspect)
		if err != nil {
			return fmt.Errorf("image: %w", err)
		}
		plan.ImageURL = ref
		return nil
	})
	if err := group.Wait(); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}

func (g *Generators) singleImage(ctx context.Context, promptText, aspect string) (string, error) {
	assets, err := g.provider.GenerateImages(ctx, gemini.ImageRequest{Prompt: promptText, AspectRatio: aspect, Count: 1})
	if err != nil {
		return "", err
	}
	if len(assets) == 0 || len(assets[0].Data) == 0 {
		return "", domain.ErrEmptyProviderResult
	}
	return DataURL(assets[0].MIMEType, assets[0].Data), nil
}

// DataURL embeds data as a self-contained base64 data reference.
func DataURL(mime string, data []byte) string {
	mime = strings.TrimSpace(mime)
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
