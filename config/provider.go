package config

import "sync/atomic"

// Provider hands out the current configuration. Update swaps the whole tree
// atomically, so handlers always see a consistent snapshot and reloads never
// require locking on the read path.
type Provider struct {
	current atomic.Pointer[Config]
}

func NewProvider(cfg *Config) *Provider {
	p := &Provider{}
	p.current.Store(cfg)
	return p
}

// Get returns the current configuration snapshot. The returned pointer must
// be treated as read-only.
func (p *Provider) Get() *Config {
	return p.current.Load()
}

// Update replaces the current configuration.
func (p *Provider) Update(cfg *Config) {
	p.current.Store(cfg)
}
