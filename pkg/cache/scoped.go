package cache

// ScopedKeyer wraps a Keyer with a prefix, namespacing its keys. The CLI
// scopes every key by the cache schema version so that a format change
// reads as a miss instead of a stale decode.
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

// GraphKey generates a prefixed key for graph caching.
func (k *ScopedKeyer) GraphKey(fingerprint string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(fingerprint, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}
