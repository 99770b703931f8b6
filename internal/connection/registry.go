package connection

import (
	"fmt"
	"sort"
	"sync"
)

// Descriptor describes one registered backend variant for discovery and
// construction purposes.
type Descriptor struct {
	// Kind is the variant's discriminator tag.
	Kind Kind `json:"kind" yaml:"kind"`

	// DisplayName is the human-readable variant name.
	DisplayName string `json:"displayName" yaml:"displayName"`

	// Description summarizes what the variant connects to.
	Description string `json:"description" yaml:"description"`

	// Component names the UI/config fragment used to construct this
	// variant. Opaque; nothing in this core depends on its value.
	Component string `json:"component" yaml:"component"`

	// New constructs a blank connection of this variant, used by the
	// repository to reconstruct the correctly-tagged value.
	New func() Connection `json:"-" yaml:"-"`
}

// Registry enumerates the known backend variants. Variants register
// themselves at package initialization, in the manner of database/sql
// drivers, so adding a variant requires no registry changes.
type Registry struct {
	mu       sync.RWMutex
	variants map[Kind]Descriptor
}

// NewRegistry creates an empty variant registry.
func NewRegistry() *Registry {
	return &Registry{variants: make(map[Kind]Descriptor)}
}

// Register adds a variant descriptor. Registering the same kind twice or
// a descriptor without a constructor is a programming error.
func (r *Registry) Register(d Descriptor) error {
	if d.Kind == "" {
		return fmt.Errorf("variant kind is required")
	}
	if d.New == nil {
		return fmt.Errorf("variant %q has no constructor", d.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.variants[d.Kind]; exists {
		return fmt.Errorf("variant %q already registered", d.Kind)
	}
	r.variants[d.Kind] = d
	return nil
}

// Unregister removes a variant. Mainly useful in tests.
func (r *Registry) Unregister(kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.variants, kind)
}

// Lookup returns the descriptor for a kind.
func (r *Registry) Lookup(kind Kind) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.variants[kind]
	return d, ok
}

// New constructs a blank connection of the given kind.
func (r *Registry) New(kind Kind) (Connection, error) {
	d, ok := r.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("unknown connection kind %q", kind)
	}
	return d.New(), nil
}

// Descriptors returns all registered variants sorted by kind for
// deterministic listings. An empty registry yields an empty slice.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.variants))
	for _, d := range r.variants {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// Kinds returns the registered kinds sorted for deterministic output.
func (r *Registry) Kinds() []Kind {
	ds := r.Descriptors()
	out := make([]Kind, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Kind)
	}
	return out
}

// Default is the process-wide registry that variant files register into
// from init().
var Default = NewRegistry()

func mustRegister(d Descriptor) {
	if err := Default.Register(d); err != nil {
		panic(err)
	}
}
