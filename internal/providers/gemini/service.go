// Package gemini adapts the Gemini text, Imagen and Veo models to the
// small surface the design pipeline needs. A deterministic Synthetic
// implementation backs offline runs and tests.
package gemini

import (
	"context"

	"google.golang.org/genai"
)

// TextRequest asks for a single text completion. When Schema is set the
// model is asked for JSON matching it.
type TextRequest struct {
	Prompt string
	Schema *genai.Schema
}

// ImageRequest asks for Count images at AspectRatio (for example "16:9").
type ImageRequest struct {
	Prompt      string
	AspectRatio string
	Count       int
}

// ImageAsset is one generated image.
type ImageAsset struct {
	Data     []byte
	MIMEType string
}

type VideoRequest struct {
	Prompt string
}

// Operation is a long-running video job. Err is set when the provider
// reports the job as failed.
type Operation struct {
	Name      string
	Done      bool
	VideoURI  string
	VideoData []byte
	MIMEType  string
	Err       error

	raw *genai.GenerateVideosOperation
}

// Service is the provider surface consumed by generators and the video
// pipeline.
type Service interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
	GenerateImages(ctx context.Context, req ImageRequest) ([]ImageAsset, error)
	SubmitVideo(ctx context.Context, req VideoRequest) (*Operation, error)
	PollVideo(ctx context.Context, op *Operation) (*Operation, error)
	DownloadVideo(ctx context.Context, uri string) ([]byte, string, error)
}
