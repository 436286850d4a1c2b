package speech

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/tonesnap/internal/logger"
)

// Backend is a speech synthesiser the process can drive.
type Backend interface {
	Name() string

	// Voices lists installed voices. It fails when the synthesiser is
	// missing.
	Voices(ctx context.Context) ([]Voice, error)

	// Speak blocks until the text has been spoken or ctx is cancelled.
	Speak(ctx context.Context, v Voice, text string) error
}

// Catalog is the set of voices found at startup. It never changes after
// LoadCatalog returns.
type Catalog struct {
	voices   []Voice
	backends map[string]Backend
}

// LoadCatalog asks every backend for its voices concurrently. Backends that
// fail are skipped and do not cut the others short; an empty catalog is
// valid and means speech is off.
func LoadCatalog(ctx context.Context, log *logger.Logger, backends ...Backend) *Catalog {
	if log == nil {
		log = logger.Nop()
	}

	var (
		mu      sync.Mutex
		found   = make([][]Voice, len(backends))
		working = make(map[string]Backend)
	)

	var g errgroup.Group
	for i, b := range backends {
		g.Go(func() error {
			voices, err := b.Voices(ctx)
			if err != nil {
				return fmt.Errorf("speech backend %s: %w", b.Name(), err)
			}
			mu.Lock()
			found[i] = voices
			working[b.Name()] = b
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Debug("speech backend unavailable", "error", err)
	}

	c := &Catalog{backends: working}
	// Keep backend order so selection is deterministic.
	for _, vs := range found {
		c.voices = append(c.voices, vs...)
	}
	log.Debug("speech catalog loaded", "voices", len(c.voices), "mandarin", len(Mandarin(c.voices)))
	return c
}

// Voices returns a copy of every discovered voice.
func (c *Catalog) Voices() []Voice {
	return append([]Voice(nil), c.voices...)
}

// Available reports whether anything can speak.
func (c *Catalog) Available() bool {
	return len(c.backends) > 0
}

func (c *Catalog) backend(name string) (Backend, bool) {
	b, ok := c.backends[name]
	return b, ok
}

// anyBackend returns the first working backend, for speaking without a
// matched voice.
func (c *Catalog) anyBackend() (Backend, bool) {
	for _, v := range c.voices {
		if b, ok := c.backends[v.Backend]; ok {
			return b, true
		}
	}
	for _, b := range c.backends {
		return b, true
	}
	return nil, false
}
