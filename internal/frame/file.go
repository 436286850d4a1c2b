package frame

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// FileSource reads a still image from disk. It is the fallback when no
// camera can be opened.
type FileSource struct {
	Path    string
	Options Options
}

// NewFileSource returns a source for path. Surrounding quotes, as left by a
// terminal drag and drop, are stripped.
func NewFileSource(path string, opts Options) *FileSource {
	return &FileSource{Path: cleanPath(path), Options: opts}
}

// Capture reads and normalises the file. It may be called repeatedly.
func (s *FileSource) Capture(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", s.Path, err)
	}
	return Normalize(data, KindFile, s.Options)
}

// Close is a no-op.
func (s *FileSource) Close() error { return nil }

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 2 {
		if (p[0] == '\'' && p[len(p)-1] == '\'') || (p[0] == '"' && p[len(p)-1] == '"') {
			p = p[1 : len(p)-1]
		}
	}
	return strings.ReplaceAll(p, `\ `, " ")
}
