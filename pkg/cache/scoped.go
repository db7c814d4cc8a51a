package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments can
// share one Redis without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(scriptHash string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(scriptHash, opts)
}

// RenderKey generates a prefixed render key.
func (k *ScopedKeyer) RenderKey(scriptHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(scriptHash, opts)
}
