package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"homedesign/pkg/zip"
)

// ExportDir writes exported design files below a root directory.
type ExportDir struct {
	root string
}

// NewExportDir creates root when missing.
func NewExportDir(root string) (*ExportDir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("storage: export directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure export directory: %w", err)
	}
	return &ExportDir{root: root}, nil
}

func (d *ExportDir) Root() string {
	if d == nil {
		return ""
	}
	return d.root
}

// Sub returns an export directory nested under d.
func (d *ExportDir) Sub(name string) (*ExportDir, error) {
	clean, err := sanitizeKey(name)
	if err != nil {
		return nil, err
	}
	return NewExportDir(filepath.Join(d.root, filepath.FromSlash(clean)))
}

// Write stores data at the relative key and returns the full path. Keys
// cannot escape the root.
func (d *ExportDir) Write(ctx context.Context, key string, data []byte) (string, error) {
	if d == nil {
		return "", errors.New("storage: no export directory configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	fullPath := filepath.Join(d.root, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", cleanKey, err)
	}
	return fullPath, nil
}

// WriteAssets writes every asset and returns the paths in order.
func (d *ExportDir) WriteAssets(ctx context.Context, assets []zip.Asset) ([]string, error) {
	paths := make([]string, 0, len(assets))
	for _, asset := range assets {
		p, err := d.Write(ctx, asset.Filename, asset.Data)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
