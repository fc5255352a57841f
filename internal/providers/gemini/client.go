package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"homedesign/internal/domain"
	"homedesign/internal/infra"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
	DefaultVideoModel = "veo-2.0-generate-001"
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	TextModel  string
	ImageModel string
	VideoModel string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client calls the Gemini API through the official SDK.
type Client struct {
	sdk        *genai.Client
	apiKey     string
	textModel  string
	imageModel string
	videoModel string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a Gemini client. A nil HTTP client is replaced by one
// with a generous timeout since image calls routinely take tens of seconds.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 3 * time.Minute}
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{
		sdk:        sdk,
		apiKey:     apiKey,
		textModel:  firstNonEmpty(opts.TextModel, DefaultTextModel),
		imageModel: firstNonEmpty(opts.ImageModel, DefaultImageModel),
		videoModel: firstNonEmpty(opts.VideoModel, DefaultVideoModel),
		httpClient: httpClient,
		logger:     infra.OrNop(opts.Logger),
	}, nil
}

func (c *Client) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	var cfg *genai.GenerateContentConfig
	if req.Schema != nil {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}
	started := time.Now()
	resp, err := c.sdk.Models.GenerateContent(ctx, c.textModel, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", domain.ErrProviderFailure, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty text from %s", domain.ErrEmptyProviderResult, c.textModel)
	}
	c.logger.Debug().
		Str("model", c.textModel).
		Bool("json", req.Schema != nil).
		Dur("elapsed", time.Since(started)).
		Msg("gemini: generated text")
	return text, nil
}

func (c *Client) GenerateImages(ctx context.Context, req ImageRequest) ([]ImageAsset, error) {
	count := clampCount(req.Count)
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: int32(count),
		AspectRatio:    req.AspectRatio,
	}
	started := time.Now()
	resp, err := c.sdk.Models.GenerateImages(ctx, c.imageModel, req.Prompt, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: generate images: %v", domain.ErrProviderFailure, err)
	}
	var assets []ImageAsset
	for _, generated := range resp.GeneratedImages {
		if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
			continue
		}
		assets = append(assets, ImageAsset{
			Data:     generated.Image.ImageBytes,
			MIMEType: firstNonEmpty(generated.Image.MIMEType, "image/png"),
		})
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("%w: no images from %s", domain.ErrEmptyProviderResult, c.imageModel)
	}
	c.logger.Debug().
		Str("model", c.imageModel).
		Str("aspect_ratio", req.AspectRatio).
		Int("quantity", len(assets)).
		Dur("elapsed", time.Since(started)).
		Msg("gemini: generated images")
	return assets, nil
}

func (c *Client) SubmitVideo(ctx context.Context, req VideoRequest) (*Operation, error) {
	op, err := c.sdk.Models.GenerateVideos(ctx, c.videoModel, req.Prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: generate videos: %v", domain.ErrProviderFailure, err)
	}
	c.logger.Info().Str("model", c.videoModel).Str("operation", op.Name).Msg("gemini: video submitted")
	return fromSDKOperation(op), nil
}

func (c *Client) PollVideo(ctx context.Context, op *Operation) (*Operation, error) {
	if op == nil {
		return nil, errors.New("gemini: nil operation")
	}
	raw := op.raw
	if raw == nil {
		raw = &genai.GenerateVideosOperation{Name: op.Name}
	}
	next, err := c.sdk.Operations.GetVideosOperation(ctx, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: poll video operation: %v", domain.ErrProviderFailure, err)
	}
	return fromSDKOperation(next), nil
}

// DownloadVideo fetches the finished video. The URI returned by Veo needs the
// API key appended as a query parameter.
func (c *Client) DownloadVideo(ctx context.Context, uri string) ([]byte, string, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, "", domain.ErrMissingVideoURI
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: download video: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("%w: download video status %d: %s", domain.ErrProviderFailure, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read video: %w", err)
	}
	if len(blob) == 0 {
		return nil, "", fmt.Errorf("%w: empty video download", domain.ErrEmptyProviderResult)
	}
	return blob, firstNonEmpty(resp.Header.Get("Content-Type"), "video/mp4"), nil
}

func fromSDKOperation(op *genai.GenerateVideosOperation) *Operation {
	if op == nil {
		return &Operation{}
	}
	out := &Operation{Name: op.Name, Done: op.Done, raw: op}
	if len(op.Error) > 0 {
		out.Done = true
		out.Err = fmt.Errorf("%w: video operation failed: %v", domain.ErrProviderFailure, operationMessage(op.Error))
		return out
	}
	if op.Response != nil {
		for _, generated := range op.Response.GeneratedVideos {
			if generated == nil || generated.Video == nil {
				continue
			}
			out.VideoURI = generated.Video.URI
			out.VideoData = generated.Video.VideoBytes
			out.MIMEType = generated.Video.MIMEType
			break
		}
	}
	return out
}

func operationMessage(errMap map[string]any) string {
	if msg, ok := errMap["message"].(string); ok && msg != "" {
		return msg
	}
	return fmt.Sprint(errMap)
}

func clampCount(n int) int {
	if n <= 0 {
		return 1
	}
	if n > 4 {
		return 4
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

var _ Service = (*Client)(nil)
