package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects or CI jobs can
// share one Redis database without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "ci:linux-gcc13:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}
