package asset

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

// ErrEmptyAsset is returned when the asset file exists but has no content.
var ErrEmptyAsset = errors.New("asset is empty")

// Asset is a file loaded once at startup and shared read-only afterwards.
type Asset struct {
	Name     string
	MimeType string
	Data     []byte
}

// Resolve makes a relative path relative to the directory of the running executable.
func Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", oops.In("asset").With("path", path).Wrapf(err, "failed to locate executable")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), path), nil
}

// Load reads the asset at path. The content type is sniffed from the data.
func Load(path string) (Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, oops.In("asset").With("path", path).Wrapf(err, "failed to read asset")
	}
	if len(data) == 0 {
		return Asset{}, oops.In("asset").With("path", path).Wrap(ErrEmptyAsset)
	}
	return Asset{
		Name:     filepath.Base(path),
		MimeType: http.DetectContentType(data),
		Data:     data,
	}, nil
}
