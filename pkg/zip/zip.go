// Package zip packs exported design files into a single archive.
package zip

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets writes assets in order under their file names. Entries share
// modified time so identical inputs produce identical archives.
func ArchiveAssets(assets []Asset, modified time.Time) ([]byte, error) {
	if len(assets) == 0 {
		return nil, errors.New("zip: no assets")
	}
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]struct{}, len(assets))
	for _, asset := range assets {
		name := path.Clean(strings.TrimLeft(strings.ReplaceAll(asset.Filename, "\\", "/"), "/"))
		if name == "." || name == "" || strings.HasPrefix(name, "../") {
			return nil, fmt.Errorf("zip: invalid file name %q", asset.Filename)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("zip: duplicate file name %q", name)
		}
		seen[name] = struct{}{}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", name, err)
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}
