package platform

// Registry maps apply URLs onto adapters. Adapters are consulted in
// registration order, first match wins; the fallback adapter matches
// everything and is always consulted last, so a detection miss is never
// an error.
type Registry struct {
	adapters []Adapter
	fallback Adapter
}

// NewRegistry creates a registry with the given fallback adapter.
func NewRegistry(fallback Adapter) *Registry {
	return &Registry{fallback: fallback}
}

// Register appends an adapter to the detection order.
func (r *Registry) Register(a Adapter) {
	r.adapters = append(r.adapters, a)
}

// Select returns the first registered adapter whose Detect matches the
// URL, or the fallback.
func (r *Registry) Select(rawURL string) Adapter {
	for _, a := range r.adapters {
		if a.Detect(rawURL) {
			return a
		}
	}
	return r.fallback
}

// Adapters returns the full detection order including the fallback.
func (r *Registry) Adapters() []Adapter {
	out := make([]Adapter, 0, len(r.adapters)+1)
	out = append(out, r.adapters...)
	if r.fallback != nil {
		out = append(out, r.fallback)
	}
	return out
}
