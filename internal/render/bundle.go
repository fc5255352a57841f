package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"homedesign/internal/domain"
	"homedesign/internal/video"
	"homedesign/pkg/zip"
)

// ObjectSource resolves object references held by a package.
type ObjectSource interface {
	Get(ref string) (video.Object, bool)
}

type BundleOptions struct {
	HTML        bool
	Theme       string
	GeneratedAt time.Time
}

// Manifest is written as package.json. Asset fields hold file names rather
// than embedded data.
type Manifest struct {
	Spec              domain.HouseSpec          `json:"spec"`
	Images            []string                  `json:"images"`
	Video             string                    `json:"video,omitempty"`
	WalkthroughScript string                    `json:"walkthroughScript"`
	ShoppingList      []domain.ShoppingListItem `json:"shoppingList"`
	Plan2D            domain.Plan               `json:"plan2D"`
	Plan3D            domain.Plan               `json:"plan3D"`
	GeneratedAt       time.Time                 `json:"generatedAt"`
}

// Bundle lays out pkg as a flat list of files ready to write or archive.
func Bundle(pkg *domain.DesignPackage, spec domain.HouseSpec, objects ObjectSource, opts BundleOptions) ([]zip.Asset, error) {
	if pkg == nil {
		return nil, fmt.Errorf("render: nil design package")
	}
	var assets []zip.Asset
	manifest := Manifest{
		Spec:              spec,
		Images:            []string{},
		WalkthroughScript: "script.md",
		ShoppingList:      pkg.ShoppingList,
		Plan2D:            domain.Plan{Description: pkg.Plan2D.Description},
		Plan3D:            domain.Plan{Description: pkg.Plan3D.Description},
		GeneratedAt:       opts.GeneratedAt.UTC(),
	}
	if manifest.ShoppingList == nil {
		manifest.ShoppingList = []domain.ShoppingListItem{}
	}

	imageNames := []string{"exterior", "interior"}
	for i, ref := range pkg.Images {
		base := fmt.Sprintf("image-%d", i+1)
		if i < len(imageNames) {
			base = imageNames[i]
		}
		asset, err := imageAsset(base, ref)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
		manifest.Images = append(manifest.Images, asset.Filename)
	}
	for _, plan := range []struct {
		base string
		ref  string
		dst  *domain.Plan
	}{
		{"plan-2d", pkg.Plan2D.ImageURL, &manifest.Plan2D},
		{"plan-3d", pkg.Plan3D.ImageURL, &manifest.Plan3D},
	} {
		asset, err := imageAsset(plan.base, plan.ref)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
		plan.dst.ImageURL = asset.Filename
	}

	videoSrc := ""
	if pkg.HasVideo() && objects != nil {
		if obj, ok := objects.Get(pkg.VideoURL); ok {
			name := "video" + Extension(obj.MIMEType, ".mp4")
			assets = append(assets, zip.Asset{Filename: name, MIME: obj.MIMEType, Data: obj.Data})
			manifest.Video = name
			videoSrc = name
		}
	}

	assets = append(assets, zip.Asset{
		Filename: "script.md",
		MIME:     "text/markdown",
		Data:     []byte("# Walkthrough Script\n\n" + strings.TrimSpace(pkg.WalkthroughScript) + "\n"),
	})
	assets = append(assets, zip.Asset{
		Filename: "floor-plans.md",
		MIME:     "text/markdown",
		Data: []byte("# 2D Floor Plan\n\n" + strings.TrimSpace(pkg.Plan2D.Description) +
			"\n\n# 3D Floor Plan\n\n" + strings.TrimSpace(pkg.Plan3D.Description) + "\n"),
	})

	shopping, err := json.MarshalIndent(manifest.ShoppingList, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: encode shopping list: %w", err)
	}
	assets = append(assets, zip.Asset{Filename: "shopping-list.json", MIME: "application/json", Data: shopping})

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: encode manifest: %w", err)
	}
	assets = append(assets, zip.Asset{Filename: "package.json", MIME: "application/json", Data: manifestJSON})

	if opts.HTML {
		var buf bytes.Buffer
		if err := Report(&buf, ReportData{Spec: spec, Package: pkg, Theme: opts.Theme, VideoSrc: videoSrc, GeneratedAt: opts.GeneratedAt}); err != nil {
			return nil, err
		}
		assets = append(assets, zip.Asset{Filename: "report.html", MIME: "text/html", Data: buf.Bytes()})
	}
	return assets, nil
}

func imageAsset(base, ref string) (zip.Asset, error) {
	mediaType, data, err := DecodeDataURL(ref)
	if err != nil {
		return zip.Asset{}, fmt.Errorf("render: %s: %w", base, err)
	}
	return zip.Asset{Filename: base + Extension(mediaType, ".png"), MIME: mediaType, Data: data}, nil
}
