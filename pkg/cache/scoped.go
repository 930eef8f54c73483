package cache

// ScopedKeyer wraps a Keyer with a prefix so separate contexts (for example
// different serve tenants sharing one redis instance) get isolated cache
// namespaces.
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

// PlanKey generates a prefixed key for a plan result.
func (k *ScopedKeyer) PlanKey(seriesHash string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(seriesHash, opts)
}

// ArtifactKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) ArtifactKey(planHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(planHash, opts)
}
