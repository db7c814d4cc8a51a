// Package session manages live diagram sessions and their persistence.
//
// A session owns one layout engine. Edits to a session are serialized by a
// per-session mutex, so each diagram is driven by one logical thread while
// different sessions proceed in parallel.
//
// # Persistence
//
// [Manager.Save] writes a [Record] (the applied edits plus a snapshot) to a
// [Store]; [Manager.Load] restores it by replaying the edits into a fresh
// engine. Backends:
//   - [FileStore]: JSON files in a directory, for the CLI and development
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// # Usage
//
//	m := session.NewManager(store, layout.DefaultConfig(), logger)
//	s, err := m.Create("billing", nil)
//	steps, err := m.Apply(s.ID, edits)
//	err = m.Save(ctx, s.ID)
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/script"
)

// Session is a live diagram.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	mu        sync.Mutex
	engine    *layout.Engine
	history   script.Script
	updatedAt time.Time
}

func newSession(id, name string, e *layout.Engine) *Session {
	now := time.Now()
	gaps := e.Config()
	return &Session{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		engine:    e,
		history:   script.Script{Layout: &gaps},
		updatedAt: now,
	}
}

// NewID returns a fresh session ID.
func NewID() string { return uuid.NewString() }

// Info is the externally visible state of a session.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Edits     int       `json:"edits"`
	Nodes     int       `json:"nodes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Info returns the session's summary.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:        s.ID,
		Name:      s.Name,
		Edits:     len(s.history.Edits),
		Nodes:     s.engine.NodeCount(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}

// Snapshot exports the session's current layout.
func (s *Session) Snapshot() graph.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

// Script returns the edits applied so far.
func (s *Session) Script() script.Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.history
	out.Edits = append([]script.Edit(nil), s.history.Edits...)
	return out
}

// Result is one applied edit and its actions.
type Result struct {
	Edit    script.Edit     `json:"edit"`
	Actions []layout.Action `json:"actions"`
}

// Apply runs edits in order under the session lock. It stops at the first
// failing edit and returns the results of the edits before it together
// with the error. Failed edits are not recorded.
func (s *Session) Apply(edits []script.Edit) ([]Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Result
	for _, ed := range edits {
		if err := ed.Validate(); err != nil {
			return out, err
		}
		actions, err := ed.Run(s.engine)
		if err != nil {
			return out, err
		}
		s.history.Edits = append(s.history.Edits, ed)
		s.updatedAt = time.Now()
		out = append(out, Result{Edit: ed, Actions: actions})
	}
	return out, nil
}

// Record is the persisted form of a session.
type Record struct {
	ID       string        `json:"id" bson:"_id"`
	Name     string        `json:"name,omitempty" bson:"name,omitempty"`
	SavedAt  time.Time     `json:"saved_at" bson:"saved_at"`
	Script   script.Script `json:"script" bson:"script"`
	Snapshot graph.Layout  `json:"snapshot" bson:"snapshot"`
}

func (s *Session) record() *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.history
	sc.Edits = append([]script.Edit(nil), s.history.Edits...)
	return &Record{
		ID:       s.ID,
		Name:     s.Name,
		SavedAt:  time.Now().UTC(),
		Script:   sc,
		Snapshot: s.engine.Snapshot(),
	}
}
