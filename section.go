// Package pagebuilder defines the content model for the page section editor:
// typed, ordered sections with JSON data payloads, and the registry of
// section definitions that drives per-type editing.
package pagebuilder

import (
	"encoding/json"
	"sort"
	"time"
)

// Status is the lifecycle tag of a section. Draft sections are excluded from
// the public render but still appear in the admin list.
type Status string

const (
	StatusActive   Status = "active"
	StatusDraft    Status = "draft"
	StatusArchived Status = "archived"
)

// Section is one ordered, typed, JSON-configured content block on a page.
// The id is server-assigned and immutable; ComponentData's shape is owned
// entirely by the registered editor for ComponentType.
type Section struct {
	ID             int64          `json:"id"`
	PageKey        string         `json:"page_key"`
	ComponentType  string         `json:"component_type"`
	ComponentOrder int            `json:"component_order"`
	ComponentName  string         `json:"component_name"`
	ComponentData  map[string]any `json:"component_data"`
	IsActive       bool           `json:"is_active"`
	Status         Status         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ReorderItem is the wire shape for persisting a reordering. A reorder always
// sends the complete set of (id, order) pairs for the page, never deltas.
type ReorderItem struct {
	ID             int64 `json:"id"`
	ComponentOrder int   `json:"component_order"`
}

// Component is the flattened shape the preview bridge pushes to a rendering
// surface: merged data (persisted + pending), keyed by id, ordered by order.
type Component struct {
	ID     int64          `json:"id"`
	Type   string         `json:"type"`
	Data   map[string]any `json:"data"`
	Order  int            `json:"order"`
	Active bool           `json:"active"`
}

// SortSections orders sections by ComponentOrder ascending, ties broken by
// id so the result is deterministic even before orders are normalized.
func SortSections(sections []Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		if sections[i].ComponentOrder == sections[j].ComponentOrder {
			return sections[i].ID < sections[j].ID
		}
		return sections[i].ComponentOrder < sections[j].ComponentOrder
	})
}

// CloneData deep-copies a section data payload. Editors and the state machine
// replace data wholesale instead of mutating in place, so every payload that
// crosses a component boundary gets cloned first.
func CloneData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		// Data payloads come from JSON and marshal back losslessly; a cycle
		// or non-JSON value here is a programming error, not user input.
		out := make(map[string]any, len(data))
		for k, v := range data {
			out[k] = v
		}
		return out
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{}
	}
	return out
}
