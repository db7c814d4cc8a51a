package script

import (
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
)

// StepFunc observes each applied edit. Returning an error stops the replay.
type StepFunc func(step int, ed Edit, actions []layout.Action) error

// Apply runs the script's edits against e in order. It stops at the first
// failing edit; the error names the step and keeps the engine's error code.
func Apply(e *layout.Engine, s Script, fn StepFunc) error {
	for i, ed := range s.Edits {
		actions, err := ed.Run(e)
		if err != nil {
			return fmt.Errorf("edit %d (%s): %w", i, ed.Op, err)
		}
		if fn != nil {
			if err := fn(i, ed, actions); err != nil {
				return err
			}
		}
	}
	return nil
}

// Replay builds a fresh engine from the script's gaps (or def) and applies
// every edit.
func Replay(s Script, def layout.Config, opts ...layout.Option) (*layout.Engine, error) {
	e, err := layout.New(s.Config(def), opts...)
	if err != nil {
		return nil, err
	}
	if err := Apply(e, s, nil); err != nil {
		return nil, err
	}
	return e, nil
}

// FromLayout returns a script that rebuilds the nodes and connectors of a
// snapshot. Nodes are added top layer first, each with the connectors to
// parents that already exist; reversed connectors are added afterwards.
//
// Replaying the script reproduces the structure and the sizes. Positions
// may differ from the snapshot, since they depend on edit history.
func FromLayout(l graph.Layout) Script {
	gaps := layout.Config{HorizontalGap: l.HorizontalGap, VerticalGap: l.VerticalGap}
	s := Script{Layout: &gaps}

	parents := make(map[string][]graph.Connector)
	for _, c := range l.Connectors {
		if !c.Reversed {
			parents[c.Source] = append(parents[c.Source], c)
		}
	}

	added := make(map[string]bool)
	linked := make(map[string]bool)
	for _, n := range l.RealNodes() {
		ed := Edit{Op: OpAddNode, ID: n.ID, Width: n.Width, Height: n.Height, Priority: n.Priority}
		for _, c := range parents[n.ID] {
			if added[c.Target] {
				ed.Links = append(ed.Links, layout.Link{Connector: c.ID, Parent: c.Target})
				linked[c.ID] = true
			}
		}
		s.Edits = append(s.Edits, ed)
		added[n.ID] = true
	}
	for _, c := range l.Connectors {
		if !linked[c.ID] {
			s.Edits = append(s.Edits, Edit{Op: OpAddConnector, ID: c.ID, Source: c.Source, Target: c.Target})
		}
	}
	return s
}
