package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"invoice-builder/internal/export"
	"invoice-builder/internal/metrics"
	"invoice-builder/internal/models"
	"invoice-builder/internal/preview"
	"invoice-builder/internal/render"
	"invoice-builder/internal/services"
	"invoice-builder/internal/timeutil"
)

var ErrNotFound = errors.New("session not found")

// Config is shared by every session of a hub
type Config struct {
	ItemRows     int
	Locale       string
	NominalWidth float64
	Padding      float64
	Render       render.Options
	Now          func() time.Time
}

// Hub tracks the live builder pages
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
}

func NewHub(cfg Config) *Hub {
	if cfg.ItemRows <= 0 {
		cfg.ItemRows = models.DefaultItemCount
	}
	if cfg.NominalWidth <= 0 {
		cfg.NominalWidth = preview.NominalWidth
	}
	if cfg.Padding < 0 {
		cfg.Padding = preview.DefaultPadding
	}
	if cfg.Now == nil {
		cfg.Now = timeutil.Now
	}
	if cfg.Render.Formatter == nil {
		cfg.Render = render.OptionsFor(cfg.Locale, "¥")
	}
	return &Hub{sessions: make(map[string]*Session), cfg: cfg}
}

// Create starts a session with a fresh form and an already rendered surface
func (h *Hub) Create() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		state:    services.NewInvoiceState(h.cfg.Now(), h.cfg.ItemRows, h.cfg.Locale),
		viewport: preview.NewViewport(),
		scaler:   preview.NewScaler(h.cfg.NominalWidth, h.cfg.Padding),
		surface:  export.NewSurface(),
		opts:     h.cfg.Render,
	}
	s.show()

	h.mu.Lock()
	h.sessions[s.ID] = s
	n := len(h.sessions)
	h.mu.Unlock()

	metrics.PreviewSessions.Inc()
	log.Printf("[Session] Created %s (%d active)", s.ID, n)
	return s
}

func (h *Hub) Get(id string) (*Session, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Remove drops a session; its state is gone for good
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	_, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if ok {
		metrics.PreviewSessions.Dec()
		log.Printf("[Session] Removed %s", id)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Snapshot is a consistent view of a session's form
type Snapshot struct {
	Revision int
	State    models.InvoiceState
	Totals   models.Totals
}

// Session is one builder page
type Session struct {
	ID string

	mu       sync.Mutex
	state    models.InvoiceState
	revision int
	viewport *preview.Viewport
	scaler   *preview.Scaler
	surface  *export.Surface
	opts     render.Options
}

// Apply runs one edit. Edits that change nothing (rejected numerics) keep
// the revision.
func (s *Session) Apply(edit models.EditRequest) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := services.ApplyEdit(s.state, edit)
	if err != nil {
		return s.snapshotLocked(), err
	}
	metrics.PreviewEdits.WithLabelValues(edit.Field).Inc()

	if !sameState(s.state, next) {
		s.state = next
		s.revision++
		s.showLocked()
	}
	return s.snapshotLocked(), nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) Viewport() *preview.Viewport { return s.viewport }
func (s *Session) Scaler() *preview.Scaler     { return s.scaler }
func (s *Session) Surface() *export.Surface    { return s.surface }

func (s *Session) snapshotLocked() Snapshot {
	items := make([]models.InvoiceItem, len(s.state.Items))
	copy(items, s.state.Items)
	st := s.state
	st.Items = items
	return Snapshot{
		Revision: s.revision,
		State:    st,
		Totals:   services.CalculateTotals(st.Items, st.TaxRate),
	}
}

func (s *Session) show() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showLocked()
}

func (s *Session) showLocked() {
	totals := services.CalculateTotals(s.state.Items, s.state.TaxRate)
	s.surface.Show(render.BuildDocument(s.state, totals, s.opts))
}

func sameState(a, b models.InvoiceState) bool {
	if len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if a.Items[i] != b.Items[i] {
			return false
		}
	}
	return a.IssueDate == b.IssueDate &&
		a.DueDate == b.DueDate &&
		a.Recipient == b.Recipient &&
		a.SenderName == b.SenderName &&
		a.SenderPhone == b.SenderPhone &&
		a.SenderAddress == b.SenderAddress &&
		a.TaxRate == b.TaxRate &&
		a.BankInfo == b.BankInfo &&
		a.Notes == b.Notes
}
