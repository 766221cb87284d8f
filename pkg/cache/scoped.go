package cache

// ScopedKeyer prefixes every key of an inner Keyer. The HTTP server uses
// it to keep its entries apart from CLI entries in a shared Redis.
//
//	serverKeyer := NewScopedKeyer(NewDefaultKeyer(), "server:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer means DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SliceKey returns the prefixed inner key.
func (k *ScopedKeyer) SliceKey(imageHash string, opts SliceKeyOpts) string {
	return k.prefix + k.inner.SliceKey(imageHash, opts)
}
