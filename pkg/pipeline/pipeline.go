// Package pipeline replays edit scripts and renders the resulting layouts.
//
// This package implements the replay → snapshot → render pipeline shared by
// the CLI commands and the HTTP server. Centralizing it keeps caching and
// output formats consistent across entry points.
//
// # Stages
//
//  1. Replay: apply every edit of a script to a fresh layout engine
//  2. Snapshot: export the positioned diagram as a [graph.Layout]
//  3. Render: encode the snapshot as JSON, DOT or SVG
//
// Snapshots and SVG artifacts are cached by the hash of the encoded script
// and the options that affect them.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Run(ctx, s, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/script"
)

// Output formats.
const (
	FormatJSON = graph.FormatJSON
	FormatDOT  = graph.FormatDOT
	FormatSVG  = graph.FormatSVG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options configures a pipeline run.
type Options struct {
	// Gaps used when the script carries no [layout] table.
	Layout layout.Config `json:"layout"`

	// Formats to render; defaults to JSON.
	Formats     []string `json:"formats,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	ShowDummies bool     `json:"show_dummies,omitempty"`

	// Steps records the actions of every edit. Step recording always
	// replays, bypassing the snapshot cache.
	Steps bool `json:"steps,omitempty"`
	// Refresh ignores cached entries and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.DefaultConfig()
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Wants reports whether format was requested.
func (o *Options) Wants(format string) bool {
	return slices.Contains(o.Formats, format)
}

// SnapshotKeyOpts returns cache key options for a replayed snapshot.
func (o *Options) SnapshotKeyOpts(s script.Script) cache.SnapshotKeyOpts {
	gaps := s.Config(o.Layout)
	return cache.SnapshotKeyOpts{HorizontalGap: gaps.HorizontalGap, VerticalGap: gaps.VerticalGap}
}

// RenderKeyOpts returns cache key options for a rendered artifact.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{Format: format, Detailed: o.Detailed, ShowDummies: o.ShowDummies}
}

// Step is one applied edit and the actions it produced.
type Step struct {
	Index   int             `json:"index"`
	Edit    script.Edit     `json:"edit"`
	Actions []layout.Action `json:"actions"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ScriptHash is the content hash of the encoded script.
	ScriptHash string

	Snapshot graph.Layout

	// Steps is set when Options.Steps was requested.
	Steps []Step

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Edits      int
	Actions    int
	Nodes      int
	Connectors int
	ReplayTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SnapshotHit bool
	RenderHit   bool // Whether all cacheable artifacts came from cache
}
