package export

import (
	"sync"

	"invoice-builder/internal/render"
)

// Surface is the mounted render target of a builder page: the document
// currently on screen plus its transient decorations.
type Surface struct {
	mu         sync.Mutex
	doc        *render.Document
	suppressed int
}

func NewSurface() *Surface {
	return &Surface{}
}

// Show replaces the displayed document
func (s *Surface) Show(doc *render.Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

// Document returns the displayed document, nil before the first Show
func (s *Surface) Document() *render.Document {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// ShadowVisible reports whether the drop shadow is currently drawn
func (s *Surface) ShadowVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed == 0
}

// hideShadow and restoreShadow must be paired. Overlapping captures stack, and
// the shadow comes back once the last one restores.
func (s *Surface) hideShadow() {
	s.mu.Lock()
	s.suppressed++
	s.mu.Unlock()
}

func (s *Surface) restoreShadow() {
	s.mu.Lock()
	if s.suppressed > 0 {
		s.suppressed--
	}
	s.mu.Unlock()
}
