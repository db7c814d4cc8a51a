package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/boxlayout/pkg/cache"
	"github.com/matzehuels/boxlayout/pkg/graph"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/observability"
	"github.com/matzehuels/boxlayout/pkg/render/nodelink"
	"github.com/matzehuels/boxlayout/pkg/script"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default entry lifetimes when set.
	TTL time.Duration
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// HashScript returns the content hash used in cache keys.
func HashScript(s script.Script) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode script: %w", err)
	}
	return cache.Hash(data), nil
}

// Run executes the complete replay → snapshot → render pipeline.
func (r *Runner) Run(ctx context.Context, s script.Script, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	hash, err := HashScript(s)
	if err != nil {
		return nil, err
	}
	result := &Result{ScriptHash: hash, Stats: Stats{Edits: len(s.Edits)}}

	replayStart := time.Now()
	snap, hit, err := r.snapshot(ctx, s, hash, opts, result)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	result.Snapshot = snap
	result.Stats.ReplayTime = time.Since(replayStart)
	result.Stats.Nodes = len(snap.RealNodes())
	result.Stats.Connectors = len(snap.Connectors)
	result.CacheInfo.SnapshotHit = hit

	r.Logger.Info("replayed script",
		"edits", result.Stats.Edits,
		"nodes", result.Stats.Nodes,
		"cached", hit,
		"duration", result.Stats.ReplayTime)

	renderStart := time.Now()
	artifacts, hit, err := r.Render(ctx, snap, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// snapshot returns the cached snapshot for the script or replays it.
func (r *Runner) snapshot(ctx context.Context, s script.Script, hash string, opts Options, result *Result) (graph.Layout, bool, error) {
	key := r.Keyer.SnapshotKey(hash, opts.SnapshotKeyOpts(s))
	hooks := observability.Cache()

	if !opts.Refresh && !opts.Steps {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				hooks.OnCacheHit(ctx, cache.KeyTypeSnapshot)
				return cached, true, nil
			}
		}
		hooks.OnCacheMiss(ctx, cache.KeyTypeSnapshot)
	}

	e, steps, err := Replay(ctx, s, opts)
	if err != nil {
		return graph.Layout{}, false, err
	}
	for _, st := range steps {
		result.Stats.Actions += len(st.Actions)
	}
	if opts.Steps {
		result.Steps = steps
	}

	snap := e.Snapshot()
	if data, err := graph.MarshalLayout(snap); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.ttl(cache.TTLSnapshot)); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			hooks.OnCacheSet(ctx, cache.KeyTypeSnapshot, len(data))
		}
	}
	return snap, false, nil
}

// Replay applies the script to a fresh engine, recording every step. The
// context is checked between edits.
func Replay(ctx context.Context, s script.Script, opts Options) (*layout.Engine, []Step, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnReplayStart(ctx, len(s.Edits))
	start := time.Now()

	var (
		steps   []Step
		actions int
	)
	e, err := layout.New(s.Config(opts.Layout), layout.WithLogger(opts.Logger))
	if err == nil {
		err = script.Apply(e, s, func(i int, ed script.Edit, as []layout.Action) error {
			steps = append(steps, Step{Index: i, Edit: ed, Actions: as})
			actions += len(as)
			return ctx.Err()
		})
	}
	hooks.OnReplayComplete(ctx, len(s.Edits), actions, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return e, steps, nil
}

// Render encodes a snapshot in every requested format. SVG output is cached
// under the script hash; JSON and DOT are cheap and always regenerated.
func (r *Runner) Render(ctx context.Context, snap graph.Layout, hash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	nopts := nodelink.Options{Detailed: opts.Detailed, ShowDummies: opts.ShowDummies}
	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true

	for _, format := range opts.Formats {
		data, hit, err := r.renderFormat(ctx, snap, hash, format, nopts, opts)
		if err != nil {
			return nil, false, err
		}
		if format == FormatSVG && !hit {
			allCached = false
		}
		artifacts[format] = data
	}
	return artifacts, allCached && opts.Wants(FormatSVG), nil
}

func (r *Runner) renderFormat(ctx context.Context, snap graph.Layout, hash, format string, nopts nodelink.Options, opts Options) ([]byte, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	var (
		data []byte
		hit  bool
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = graph.MarshalLayout(snap)
	case FormatDOT:
		data = []byte(nodelink.ToDOT(snap, nopts))
	case FormatSVG:
		data, hit, err = r.renderSVG(ctx, snap, hash, nopts, opts)
	}
	hooks.OnRenderComplete(ctx, format, time.Since(start), err)
	return data, hit, err
}

func (r *Runner) renderSVG(ctx context.Context, snap graph.Layout, hash string, nopts nodelink.Options, opts Options) ([]byte, bool, error) {
	hooks := observability.Cache()
	key := r.Keyer.RenderKey(hash, opts.RenderKeyOpts(FormatSVG))
	if hash != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			hooks.OnCacheHit(ctx, cache.KeyTypeRender)
			return data, true, nil
		}
		hooks.OnCacheMiss(ctx, cache.KeyTypeRender)
	}

	svg, err := nodelink.Render(snap, nopts)
	if err != nil {
		return nil, false, err
	}
	if hash != "" {
		if err := r.Cache.Set(ctx, key, svg, r.ttl(cache.TTLRender)); err != nil {
			r.Logger.Warn("cache write failed", "key", key, "err", err)
		} else {
			hooks.OnCacheSet(ctx, cache.KeyTypeRender, len(svg))
		}
	}
	return svg, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
