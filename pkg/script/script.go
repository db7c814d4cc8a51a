package script

import (
	"fmt"

	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/geom"
	"github.com/matzehuels/boxlayout/pkg/layout"
)

// Op names one engine edit.
type Op string

// Supported operations. The names match the edit kinds the engine reports
// to its hooks.
const (
	OpAddNode         Op = layout.EditAddNode
	OpRemoveNode      Op = layout.EditRemoveNode
	OpResizeNode      Op = layout.EditResizeNode
	OpAddConnector    Op = layout.EditAddConnector
	OpRemoveConnector Op = layout.EditRemoveConnector
	OpReroute         Op = layout.EditReroute
	OpCompact         Op = layout.EditCompact
)

// Script is an ordered list of edits, optionally with its own gaps.
type Script struct {
	// Layout overrides the host's gaps when set.
	Layout *layout.Config `json:"layout,omitempty" toml:"layout,omitempty"`
	Edits  []Edit         `json:"edits" toml:"edits"`
}

// Edit is a single engine call. Which fields are read depends on Op:
//
//	add_node          ID, Width, Height, Priority, Links
//	remove_node       ID
//	resize_node       ID, Width, Height
//	add_connector     ID, Source, Target
//	remove_connector  ID
//	reroute, compact  (none)
type Edit struct {
	Op       Op            `json:"op" toml:"op"`
	ID       string        `json:"id,omitempty" toml:"id,omitempty"`
	Width    float64       `json:"width,omitempty" toml:"width,omitempty"`
	Height   float64       `json:"height,omitempty" toml:"height,omitempty"`
	Priority int           `json:"priority,omitempty" toml:"priority,omitempty"`
	Links    []layout.Link `json:"links,omitempty" toml:"links,omitempty"`
	Source   string        `json:"source,omitempty" toml:"source,omitempty"`
	Target   string        `json:"target,omitempty" toml:"target,omitempty"`
}

// Size returns the edit's width and height as a size.
func (ed Edit) Size() geom.Size { return geom.Size{Width: ed.Width, Height: ed.Height} }

func (ed Edit) String() string {
	switch ed.Op {
	case OpAddNode:
		s := fmt.Sprintf("%s %s %gx%g", ed.Op, ed.ID, ed.Width, ed.Height)
		for _, l := range ed.Links {
			s += fmt.Sprintf(" %s->%s", l.Connector, l.Parent)
		}
		return s
	case OpResizeNode:
		return fmt.Sprintf("%s %s %gx%g", ed.Op, ed.ID, ed.Width, ed.Height)
	case OpAddConnector:
		return fmt.Sprintf("%s %s %s->%s", ed.Op, ed.ID, ed.Source, ed.Target)
	case OpRemoveNode, OpRemoveConnector:
		return fmt.Sprintf("%s %s", ed.Op, ed.ID)
	default:
		return string(ed.Op)
	}
}

// Validate checks that the edit carries the fields its operation needs.
// Referential checks (unknown nodes, duplicate IDs) are left to the engine.
func (ed Edit) Validate() error {
	switch ed.Op {
	case OpAddNode:
		if ed.ID == "" {
			return errors.New(errors.ErrCodeInvalidScript, "%s: missing id", ed.Op)
		}
		for i, l := range ed.Links {
			if l.Connector == "" || l.Parent == "" {
				return errors.New(errors.ErrCodeInvalidScript, "%s %s: link %d needs connector and parent", ed.Op, ed.ID, i)
			}
		}
	case OpRemoveNode, OpResizeNode, OpRemoveConnector:
		if ed.ID == "" {
			return errors.New(errors.ErrCodeInvalidScript, "%s: missing id", ed.Op)
		}
	case OpAddConnector:
		if ed.ID == "" || ed.Source == "" || ed.Target == "" {
			return errors.New(errors.ErrCodeInvalidScript, "%s: id, source and target are required", ed.Op)
		}
	case OpReroute, OpCompact:
	case "":
		return errors.New(errors.ErrCodeInvalidScript, "missing op")
	default:
		return errors.New(errors.ErrCodeInvalidScript, "unknown op %q", ed.Op)
	}
	return nil
}

// Run applies the edit to e and returns the actions it produced.
func (ed Edit) Run(e *layout.Engine) ([]layout.Action, error) {
	switch ed.Op {
	case OpAddNode:
		return e.AddNode(ed.ID, ed.Size(), ed.Priority, ed.Links...)
	case OpRemoveNode:
		return e.RemoveNode(ed.ID)
	case OpResizeNode:
		return e.ResizeNode(ed.ID, ed.Size())
	case OpAddConnector:
		return e.AddConnector(ed.ID, ed.Source, ed.Target)
	case OpRemoveConnector:
		return e.RemoveConnector(ed.ID)
	case OpReroute:
		return e.Reroute()
	case OpCompact:
		return e.Compact()
	}
	return nil, ed.Validate()
}

// Validate checks every edit and the optional gaps.
func (s Script) Validate() error {
	if s.Layout != nil {
		if err := s.Layout.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScript, err, "layout")
		}
	}
	for i, ed := range s.Edits {
		if err := ed.Validate(); err != nil {
			return fmt.Errorf("edit %d: %w", i, err)
		}
	}
	return nil
}

// Config returns the script's gaps, or def when it has none.
func (s Script) Config(def layout.Config) layout.Config {
	if s.Layout != nil {
		return *s.Layout
	}
	return def
}
