package session

import (
	"context"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/script"
)

// Manager holds the live sessions of a process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store  Store
	cfg    layout.Config
	logger *log.Logger
}

// NewManager returns a manager creating engines with cfg. A nil store
// disables Save and Load.
func NewManager(store Store, cfg layout.Config, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Create starts a session. seed, when non-nil, is replayed into the new
// engine; its gaps override the manager's.
func (m *Manager) Create(name string, seed *script.Script) (*Session, error) {
	return m.create(NewID(), name, seed)
}

func (m *Manager) create(id, name string, seed *script.Script) (*Session, error) {
	cfg := m.cfg
	if seed != nil {
		if err := seed.Validate(); err != nil {
			return nil, err
		}
		cfg = seed.Config(cfg)
	}
	e, err := layout.New(cfg, layout.WithLogger(m.logger))
	if err != nil {
		return nil, err
	}
	s := newSession(id, name, e)
	if seed != nil {
		if _, err := s.Apply(seed.Edits); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.logger.Debug("session created", "id", id, "edits", len(s.history.Edits))
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	return s, nil
}

// Apply runs edits against a live session.
func (m *Manager) Apply(id string, edits []script.Edit) ([]Result, error) {
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return s.Apply(edits)
}

// List returns the live sessions ordered by creation time.
func (m *Manager) List() []Info {
	m.mu.RLock()
	out := make([]Info, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Info())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Close drops a live session. Stored records are kept.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return notFound(id)
	}
	delete(m.sessions, id)
	return nil
}

// Save persists a live session.
func (m *Manager) Save(ctx context.Context, id string) (*Record, error) {
	if m.store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no session store configured")
	}
	s, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	rec := s.record()
	if err := m.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	m.logger.Debug("session saved", "id", id, "edits", len(rec.Script.Edits))
	return rec, nil
}

// Load restores a stored session by replaying its edits. A record without
// edits is rebuilt from its snapshot. An already live session with the same
// ID is replaced.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if m.store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no session store configured")
	}
	rec, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	seed := rec.Script
	if len(seed.Edits) == 0 && len(rec.Snapshot.Nodes) > 0 {
		seed = script.FromLayout(rec.Snapshot)
	}
	return m.create(rec.ID, rec.Name, &seed)
}
