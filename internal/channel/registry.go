package channel

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds all registered channel adapters and exposes their optional
// capabilities. It must be created via NewRegistry and passed explicitly to
// components that need it.
type Registry struct {
	mu       sync.RWMutex
	adapters map[ChannelType]Adapter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: map[ChannelType]Adapter{},
	}
}

// Register adds an adapter to the registry.
func (r *Registry) Register(adapter Adapter) error {
	if adapter == nil {
		return fmt.Errorf("adapter is nil")
	}
	ct := normalizeChannelType(adapter.Type().String())
	if ct == "" {
		return fmt.Errorf("channel type is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[ct]; exists {
		return fmt.Errorf("channel type already registered: %s", ct)
	}
	r.adapters[ct] = adapter
	return nil
}

// MustRegister calls Register and panics on error.
func (r *Registry) MustRegister(adapter Adapter) {
	if err := r.Register(adapter); err != nil {
		panic(err)
	}
}

// Unregister removes a channel type from the registry.
func (r *Registry) Unregister(channelType ChannelType) bool {
	ct := normalizeChannelType(channelType.String())
	if ct == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.adapters[ct]; !exists {
		return false
	}
	delete(r.adapters, ct)
	return true
}

// Get returns the adapter for the given channel type.
func (r *Registry) Get(channelType ChannelType) (Adapter, bool) {
	ct := normalizeChannelType(channelType.String())
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[ct]
	return adapter, ok
}

// List returns all registered adapters ordered by type.
func (r *Registry) List() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		items = append(items, a)
	}
	slices.SortFunc(items, func(a, b Adapter) int { return strings.Compare(a.Type().String(), b.Type().String()) })
	return items
}

// Types returns all registered channel types.
func (r *Registry) Types() []ChannelType {
	items := make([]ChannelType, 0)
	for _, a := range r.List() {
		items = append(items, normalizeChannelType(a.Type().String()))
	}
	return items
}

// ListDescriptors returns descriptors for all registered channel types.
func (r *Registry) ListDescriptors() []Descriptor {
	adapters := r.List()
	items := make([]Descriptor, 0, len(adapters))
	for _, a := range adapters {
		items = append(items, a.Descriptor())
	}
	return items
}

// ParseChannelType validates and normalizes a raw string into a registered ChannelType.
func (r *Registry) ParseChannelType(raw string) (ChannelType, error) {
	ct := normalizeChannelType(raw)
	if ct == "" {
		return "", fmt.Errorf("unsupported channel type: %s", raw)
	}
	if _, ok := r.Get(ct); !ok {
		return "", fmt.Errorf("unsupported channel type: %s", raw)
	}
	return ct, nil
}

// NormalizeConfig runs the adapter's ConfigNormalizer when it has one. Types
// without an adapter or a normalizer get their config back unchanged.
func (r *Registry) NormalizeConfig(channelType ChannelType, raw map[string]any) (map[string]any, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	normalizer, ok := r.GetConfigNormalizer(channelType)
	if !ok {
		return raw, nil
	}
	return normalizer.NormalizeConfig(raw)
}

// --- Capability accessors ---

// GetSender returns the Sender for the given channel type, or nil if unsupported.
func (r *Registry) GetSender(channelType ChannelType) (Sender, bool) {
	return capability[Sender](r, channelType)
}

// GetWebhookParser returns the WebhookParser for the given channel type, or nil if unsupported.
func (r *Registry) GetWebhookParser(channelType ChannelType) (WebhookParser, bool) {
	return capability[WebhookParser](r, channelType)
}

// GetPoller returns the Poller for the given channel type, or nil if unsupported.
func (r *Registry) GetPoller(channelType ChannelType) (Poller, bool) {
	return capability[Poller](r, channelType)
}

// GetCommentReplier returns the CommentReplier for the given channel type, or nil if unsupported.
func (r *Registry) GetCommentReplier(channelType ChannelType) (CommentReplier, bool) {
	return capability[CommentReplier](r, channelType)
}

// GetConfigurer returns the Configurer for the given channel type, or nil if unsupported.
func (r *Registry) GetConfigurer(channelType ChannelType) (Configurer, bool) {
	return capability[Configurer](r, channelType)
}

// GetConfigNormalizer returns the ConfigNormalizer for the given channel type, or nil if unsupported.
func (r *Registry) GetConfigNormalizer(channelType ChannelType) (ConfigNormalizer, bool) {
	return capability[ConfigNormalizer](r, channelType)
}

func capability[T any](r *Registry, channelType ChannelType) (T, bool) {
	var zero T
	adapter, ok := r.Get(channelType)
	if !ok {
		return zero, false
	}
	c, ok := adapter.(T)
	return c, ok
}

func normalizeChannelType(raw string) ChannelType {
	normalized := strings.TrimSpace(strings.ToLower(raw))
	if normalized == "" {
		return ""
	}
	return ChannelType(normalized)
}
