package pagebuilder

import "sort"

// FallbackIcon is returned by IconFor for types with no registered definition.
const FallbackIcon = "▦"

// EditorFunc builds the headless form for a section type. It receives the
// current data payload and a callback; calling onChange with a replacement
// payload is the only way an editor communicates a change upward.
type EditorFunc func(data map[string]any, onChange func(map[string]any)) *Form

// Definition describes one section type: display metadata, its form editor,
// and the default data shape for newly seeded sections.
type Definition struct {
	Type        string
	Label       string
	Icon        string
	Editor      EditorFunc
	DefaultData map[string]any
}

// Registry is a static lookup table from a component type tag to its
// definition. Lookups are total: unknown tags fall back gracefully instead of
// failing, because persisted data may reference types not known to this build.
type Registry struct {
	defs  map[string]Definition
	order []string
}

// NewRegistry builds a registry from the given definitions. Later definitions
// with a duplicate type tag replace earlier ones. The registry is immutable
// once built.
func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{defs: make(map[string]Definition, len(defs))}
	for _, def := range defs {
		if def.Type == "" {
			continue
		}
		if _, exists := r.defs[def.Type]; !exists {
			r.order = append(r.order, def.Type)
		}
		r.defs[def.Type] = def
	}
	return r
}

// Get returns the definition for a type tag. The second result is false when
// the type is unregistered; that is a recognized, non-fatal condition.
func (r *Registry) Get(componentType string) (Definition, bool) {
	def, ok := r.defs[componentType]
	return def, ok
}

// List returns all definitions in registration order.
func (r *Registry) List() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.defs[t])
	}
	return out
}

// Types returns all registered type tags, sorted.
func (r *Registry) Types() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	sort.Strings(out)
	return out
}

// IconFor returns the icon for a type, or FallbackIcon when unregistered.
func (r *Registry) IconFor(componentType string) string {
	if def, ok := r.defs[componentType]; ok && def.Icon != "" {
		return def.Icon
	}
	return FallbackIcon
}

// LabelFor returns the label for a type, or the type tag itself when
// unregistered so the admin list can still name the row.
func (r *Registry) LabelFor(componentType string) string {
	if def, ok := r.defs[componentType]; ok && def.Label != "" {
		return def.Label
	}
	return componentType
}

// DefaultDataFor returns a copy of the default payload for a type, or an
// empty object when unregistered.
func (r *Registry) DefaultDataFor(componentType string) map[string]any {
	if def, ok := r.defs[componentType]; ok {
		return CloneData(def.DefaultData)
	}
	return map[string]any{}
}
