// Package view holds the non-presentational logic of the section list:
// one-row-at-a-time expansion, confirm flows, and per-row action
// availability. Every mutation is delegated to the editor state machine.
package view

import (
	"context"
	"sync"

	"github.com/toolsuite/pagebuilder"
	"github.com/toolsuite/pagebuilder/internal/editor"
)

// Row is one rendered list entry.
type Row struct {
	Section          pagebuilder.Section `json:"section"`
	Label            string              `json:"label"`
	Icon             string              `json:"icon"`
	Expanded         bool                `json:"expanded"`
	Dirty            bool                `json:"dirty"`             // has a pending edit
	Busy             bool                `json:"busy"`              // any operation in flight for this row
	CanMoveUp        bool                `json:"can_move_up"`
	CanMoveDown      bool                `json:"can_move_down"`
	HasEditor        bool                `json:"has_editor"`        // false for unregistered types ("no editor available")
	ConfirmingDelete bool                `json:"confirming_delete"`
}

// ListController drives the section list UI for one page.
type ListController struct {
	ed       *editor.Editor
	registry *pagebuilder.Registry

	mu               sync.Mutex
	expandedID       int64 // 0 = none
	confirmingDelete int64 // 0 = none
}

// NewListController creates a controller over an editor and registry.
func NewListController(ed *editor.Editor, registry *pagebuilder.Registry) *ListController {
	return &ListController{ed: ed, registry: registry}
}

// Rows assembles the display model for the current editor state.
func (c *ListController) Rows() []Row {
	sections := c.ed.Sections()

	c.mu.Lock()
	expanded := c.expandedID
	confirming := c.confirmingDelete
	c.mu.Unlock()

	rows := make([]Row, len(sections))
	for i, section := range sections {
		_, registered := c.registry.Get(section.ComponentType)
		rows[i] = Row{
			Section:          section,
			Label:            c.registry.LabelFor(section.ComponentType),
			Icon:             c.registry.IconFor(section.ComponentType),
			Expanded:         section.ID == expanded,
			Dirty:            c.ed.HasPending(section.ID),
			Busy:             c.rowBusy(section.ID),
			CanMoveUp:        i > 0,
			CanMoveDown:      i < len(sections)-1,
			HasEditor:        registered,
			ConfirmingDelete: section.ID == confirming,
		}
	}
	return rows
}

func (c *ListController) rowBusy(id int64) bool {
	return c.ed.IsSaving(id) || c.ed.IsDeleting(id) || c.ed.IsDuplicating(id)
}

// ToggleExpand expands a row for editing, collapsing any other open row.
// Toggling the open row collapses it.
func (c *ListController) ToggleExpand(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.expandedID == id {
		c.expandedID = 0
		return
	}
	c.expandedID = id
	// Switching rows abandons an unconfirmed delete on the old row.
	if c.confirmingDelete != id {
		c.confirmingDelete = 0
	}
}

// ExpandedID returns the currently expanded row, 0 when none.
func (c *ListController) ExpandedID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expandedID
}

// EditorForm builds the form for a row from its registered editor, reading
// through the editor's live-data path so pending edits take precedence.
// Returns nil for unregistered types.
func (c *ListController) EditorForm(id int64, componentType string) *pagebuilder.Form {
	def, ok := c.registry.Get(componentType)
	if !ok || def.Editor == nil {
		return nil
	}
	return def.Editor(c.ed.LiveData(id), func(data map[string]any) {
		c.ed.SetFieldData(id, data)
	})
}

// RequestDelete arms the confirm step for a row; the actual delete only
// happens on ConfirmDelete.
func (c *ListController) RequestDelete(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmingDelete = id
}

// CancelDelete disarms a pending delete confirmation.
func (c *ListController) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmingDelete = 0
}

// ConfirmDelete performs the armed delete. No-op when nothing is armed.
func (c *ListController) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.confirmingDelete
	c.confirmingDelete = 0
	c.mu.Unlock()
	if id == 0 {
		return nil
	}
	if c.ed.IsDeleting(id) {
		return nil
	}
	err := c.ed.DeleteSection(ctx, id)
	if err == nil {
		c.mu.Lock()
		if c.expandedID == id {
			c.expandedID = 0
		}
		c.mu.Unlock()
	}
	return err
}
