package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidHouseSpec    = errors.New("invalid house spec")
	ErrProviderFailure     = errors.New("provider failure")
	ErrEmptyProviderResult = errors.New("provider returned no content")
	ErrMissingVideoURI     = errors.New("video generation failed to produce a download link")
	ErrRunInProgress       = errors.New("a design run is already in progress")
	ErrInvalidTheme        = errors.New("invalid theme")
)

// ValidationError reports every field problem found in a HouseSpec.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrInvalidHouseSpec.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, name := range sortedKeys(e.Fields) {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return ErrInvalidHouseSpec.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidHouseSpec
}
