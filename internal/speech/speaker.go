package speech

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/tonesnap/internal/logger"
)

// ErrUnavailable means no synthesiser was found.
var ErrUnavailable = errors.New("speech unavailable")

// Speaker speaks one utterance at a time. Starting a new one cancels the
// one in progress.
type Speaker struct {
	catalog *Catalog
	log     *logger.Logger

	mu        sync.Mutex
	preferred string
	cancel    context.CancelFunc
	gen       uint64
}

// NewSpeaker creates a Speaker. preferredID selects a voice by ID when it
// is installed.
func NewSpeaker(c *Catalog, preferredID string, log *logger.Logger) *Speaker {
	if log == nil {
		log = logger.Nop()
	}
	return &Speaker{catalog: c, preferred: preferredID, log: log}
}

// Voice returns the voice Speak would use.
func (s *Speaker) Voice() (Voice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Select(s.catalog.Voices(), s.preferred)
}

// SetVoice changes the preferred voice. An empty id restores automatic
// selection.
func (s *Speaker) SetVoice(id string) {
	s.mu.Lock()
	s.preferred = id
	s.mu.Unlock()
}

// NextVoice switches to the Mandarin voice after the current one, wrapping
// around, and returns it.
func (s *Speaker) NextVoice() (Voice, bool) {
	voices := Mandarin(s.catalog.Voices())
	if len(voices) == 0 {
		return Voice{}, false
	}
	cur, _ := s.Voice()
	next := voices[0]
	for i, v := range voices {
		if v.ID == cur.ID && v.Backend == cur.Backend {
			next = voices[(i+1)%len(voices)]
			break
		}
	}
	s.SetVoice(next.ID)
	return next, true
}

// Speak reads text aloud and blocks until done. A later Speak or Stop
// cancels it, in which case Speak returns nil.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	voice, ok := s.Voice()
	var b Backend
	if ok {
		b, ok = s.catalog.backend(voice.Backend)
	}
	if !ok {
		voice = Voice{Lang: FallbackLang}
		b, ok = s.catalog.anyBackend()
	}
	if !ok {
		return ErrUnavailable
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	err := b.Speak(ctx, voice, text)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		s.log.Warn("speak failed", "backend", b.Name(), "voice", voice.Name, "error", err)
	}
	return err
}

// Stop cancels the utterance in progress, if any.
func (s *Speaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
