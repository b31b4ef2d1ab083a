package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants can share one
// cache without seeing each other's entries.
//
// Example usage:
//
//	// Per-client keys in the compile service
//	clientKeyer := NewScopedKeyer(NewDefaultKeyer(), "client:abc123:")
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

// CompileKey generates a prefixed key for a compiled circuit.
func (k *ScopedKeyer) CompileKey(sourceHash string, opts CompileKeyOpts) string {
	return k.prefix + k.inner.CompileKey(sourceHash, opts)
}

// LayersKey generates a prefixed key for a layer listing.
func (k *ScopedKeyer) LayersKey(sourceHash string) string {
	return k.prefix + k.inner.LayersKey(sourceHash)
}
