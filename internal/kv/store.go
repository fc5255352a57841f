// Package kv holds the small client-side key-value state: the theme
// preference and the last successful video generation timestamp.
package kv

import (
	"context"
	"fmt"
	"strings"

	"homedesign/internal/domain"
)

const (
	KeyTheme               = "theme"
	KeyLastVideoGeneration = "lastVideoGenerationTimestamp"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Store is a string key-value store. Get reports ok=false for unknown keys.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Theme returns the stored theme, defaulting to light.
func Theme(ctx context.Context, s Store) (string, error) {
	v, ok, err := s.Get(ctx, KeyTheme)
	if err != nil {
		return "", fmt.Errorf("read theme: %w", err)
	}
	if !ok || (v != ThemeLight && v != ThemeDark) {
		return ThemeLight, nil
	}
	return v, nil
}

// SetTheme stores theme after validating it.
func SetTheme(ctx context.Context, s Store, theme string) (string, error) {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeLight && theme != ThemeDark {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidTheme, theme)
	}
	if err := s.Set(ctx, KeyTheme, theme); err != nil {
		return "", fmt.Errorf("write theme: %w", err)
	}
	return theme, nil
}
