package gemini

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/genai"

	"homedesign/internal/domain"
	"homedesign/internal/infra"
)

const syntheticScheme = "synthetic://"

// Synthetic produces deterministic placeholder output without network
// access. Video operations complete after PollsToComplete polls.
type Synthetic struct {
	PollsToComplete int
	ArrayLength     int

	logger *infra.Logger
	mu     sync.Mutex
	polls  map[string]int
}

func NewSynthetic(logger *infra.Logger) *Synthetic {
	return &Synthetic{
		PollsToComplete: 2,
		ArrayLength:     5,
		logger:          infra.OrNop(logger),
		polls:           map[string]int{},
	}
}

func (s *Synthetic) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	seed := deterministicSeed(req.Prompt)
	if req.Schema != nil {
		data, err := json.Marshal(s.sample(req.Schema, "item", 0))
		if err != nil {
			return "", fmt.Errorf("synthetic: encode sample: %w", err)
		}
		return string(data), nil
	}
	subject := firstLine(req.Prompt)
	return fmt.Sprintf("Synthetic draft %s.\n\n%s\n\nThis placeholder text stands in for model output while no Gemini API key is configured.", seed, subject), nil
}

func (s *Synthetic) GenerateImages(ctx context.Context, req ImageRequest) ([]ImageAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	count := clampCount(req.Count)
	width, height := normalizeAspect(req.AspectRatio)
	assets := make([]ImageAsset, 0, count)
	for i := 0; i < count; i++ {
		seed := deterministicSeed(req.Prompt, req.AspectRatio, i)
		data := renderSyntheticImage(width, height, seed)
		if data == nil {
			return nil, fmt.Errorf("%w: synthetic image encode", domain.ErrProviderFailure)
		}
		assets = append(assets, ImageAsset{Data: data, MIMEType: "image/png"})
	}
	s.logger.Debug().Int("quantity", count).Str("aspect_ratio", req.AspectRatio).Msg("gemini: generated synthetic images")
	return assets, nil
}

func (s *Synthetic) SubmitVideo(ctx context.Context, req VideoRequest) (*Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := "operations/synthetic-" + deterministicSeed(req.Prompt)
	s.mu.Lock()
	s.polls[name] = 0
	s.mu.Unlock()
	return &Operation{Name: name}, nil
}

func (s *Synthetic) PollVideo(ctx context.Context, op *Operation) (*Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if op == nil {
		return nil, fmt.Errorf("synthetic: nil operation")
	}
	s.mu.Lock()
	s.polls[op.Name]++
	n := s.polls[op.Name]
	if n >= s.PollsToComplete {
		delete(s.polls, op.Name)
	}
	s.mu.Unlock()

	next := &Operation{Name: op.Name}
	if n >= s.PollsToComplete {
		next.Done = true
		next.VideoURI = syntheticScheme + strings.TrimPrefix(op.Name, "operations/")
	}
	return next, nil
}

func (s *Synthetic) DownloadVideo(ctx context.Context, uri string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if !strings.HasPrefix(uri, syntheticScheme) {
		return nil, "", domain.ErrMissingVideoURI
	}
	lines := []string{
		"Synthetic walkthrough video placeholder",
		"Source: " + uri,
	}
	return []byte(strings.Join(lines, "\n")), "video/mp4", nil
}

// sample builds a value matching schema with stable placeholder content.
func (s *Synthetic) sample(schema *genai.Schema, name string, index int) any {
	switch schema.Type {
	case genai.TypeArray:
		n := s.ArrayLength
		if n <= 0 {
			n = 1
		}
		out := make([]any, 0, n)
		for i := 0; i < n; i++ {
			if schema.Items == nil {
				out = append(out, fmt.Sprintf("%s %d", name, i+1))
				continue
			}
			out = append(out, s.sample(schema.Items, name, i))
		}
		return out
	case genai.TypeObject:
		obj := make(map[string]any, len(schema.Properties))
		for key, prop := range schema.Properties {
			obj[key] = s.sample(prop, key, index)
		}
		return obj
	case genai.TypeInteger:
		return index + 1
	case genai.TypeNumber:
		return float64(index + 1)
	case genai.TypeBoolean:
		return index%2 == 0
	default:
		return fmt.Sprintf("Sample %s %d", name, index+1)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if line, _, ok := strings.Cut(s, "\n"); ok {
		return strings.TrimSpace(line)
	}
	return s
}

func renderSyntheticImage(width, height int, seed string) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	base := colorFromSeed(seed, 0)
	accent := colorFromSeed(seed, 1)
	draw.Draw(img, img.Bounds(), &image.Uniform{base}, image.Point{}, draw.Src)

	stripeHeight := max(16, height/12)
	for y := 0; y < height; y += stripeHeight * 2 {
		stripe := image.Rect(0, y, width, min(height, y+stripeHeight))
		draw.Draw(img, stripe, &image.Uniform{accent}, image.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	for x := 0; x < max(width, height); x += max(16, width/32) {
		for y := 0; y < height; y++ {
			if x+y >= width {
				break
			}
			img.Set(x+y, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func colorFromSeed(seed string, shift int) color.RGBA {
	if len(seed) < 6 {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.RGBA{R: parseHexByte(segment[0:2]), G: parseHexByte(segment[2:4]), B: parseHexByte(segment[4:6]), A: 255}
}

func parseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}

// normalizeAspect maps an aspect ratio to placeholder pixel dimensions.
func normalizeAspect(aspect string) (int, int) {
	switch strings.TrimSpace(aspect) {
	case "16:9":
		return 320, 180
	case "4:3":
		return 320, 240
	case "9:16":
		return 180, 320
	case "1:1", "":
		return 256, 256
	}
	if a, b, ok := strings.Cut(aspect, ":"); ok {
		w, errW := strconv.Atoi(strings.TrimSpace(a))
		h, errH := strconv.Atoi(strings.TrimSpace(b))
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return 320, 320 * h / w
		}
	}
	return 256, 256
}

var _ Service = (*Synthetic)(nil)
