// Package editor owns the authoritative section list and unsaved-edit state
// for one page. It is the single source of truth every view and the preview
// bridge read from, and the sole mutator of that state.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/toolsuite/pagebuilder"
	"github.com/toolsuite/pagebuilder/internal/client"
)

// Direction selects a reorder neighbor for MoveSection.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// Editor is the page editor state machine. All exported methods are safe for
// concurrent use; network calls run outside the state lock so the UI stays
// responsive while an operation is in flight.
type Editor struct {
	pageKey  string
	api      client.PageComponents
	notifier Notifier

	mu          sync.RWMutex
	sections    []pagebuilder.Section
	pending     map[int64]map[string]any
	loading     bool
	savingAll   bool
	saving      map[int64]struct{}
	deleting    map[int64]struct{}
	duplicating map[int64]struct{}

	// generation stamps each completed Load. Reconciliation from calls that
	// resolve after a newer Load is discarded instead of promoting stale data.
	generation uint64

	listenerMu sync.Mutex
	listeners  []func()
}

// New creates an editor for one page. notifier may be nil, in which case
// outcomes go to the process log.
func New(pageKey string, api client.PageComponents, notifier Notifier) *Editor {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Editor{
		pageKey:     pageKey,
		api:         api,
		notifier:    notifier,
		pending:     make(map[int64]map[string]any),
		saving:      make(map[int64]struct{}),
		deleting:    make(map[int64]struct{}),
		duplicating: make(map[int64]struct{}),
	}
}

// PageKey returns the page this editor owns.
func (e *Editor) PageKey() string { return e.pageKey }

// Subscribe registers a callback invoked after every state change. The
// preview bridge uses this to re-push merged state.
func (e *Editor) Subscribe(fn func()) {
	e.listenerMu.Lock()
	defer e.listenerMu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// signal runs subscribers outside the state lock.
func (e *Editor) signal() {
	e.listenerMu.Lock()
	listeners := make([]func(), len(e.listeners))
	copy(listeners, e.listeners)
	e.listenerMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (e *Editor) notify(level Level, operation, message string, sectionID int64) {
	e.notifier.Notify(newNotice(level, operation, message, e.pageKey, sectionID))
}

// Load fetches all sections for the page (any status, admin view), replaces
// the section list sorted by order, and unconditionally clears unsaved edits.
// A reload always discards pending work; callers that care must save first.
// On failure the prior state is left untouched.
func (e *Editor) Load(ctx context.Context) error {
	e.mu.Lock()
	e.loading = true
	e.mu.Unlock()
	e.signal()

	sections, err := e.api.ListByPage(ctx, e.pageKey)

	e.mu.Lock()
	e.loading = false
	if err != nil {
		e.mu.Unlock()
		e.signal()
		e.notify(LevelError, "load", client.UserFriendlyMessage(err), 0)
		return err
	}

	sorted := make([]pagebuilder.Section, len(sections))
	copy(sorted, sections)
	pagebuilder.SortSections(sorted)
	e.sections = sorted
	e.pending = make(map[int64]map[string]any)
	e.generation++
	e.mu.Unlock()

	e.signal()
	return nil
}

// LiveData is the single read path for a section's current data: the pending
// edit when one exists, else the persisted payload, else an empty object for
// unknown ids.
func (e *Editor) LiveData(id int64) map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if data, ok := e.pending[id]; ok {
		return pagebuilder.CloneData(data)
	}
	for _, section := range e.sections {
		if section.ID == id {
			return pagebuilder.CloneData(section.ComponentData)
		}
	}
	return map[string]any{}
}

// SetFieldData records a local-only replacement payload for a section.
// Synchronous, no network; safe to call on every keystroke. Each call
// overwrites the previous pending entry (last write wins).
func (e *Editor) SetFieldData(id int64, data map[string]any) {
	e.mu.Lock()
	e.pending[id] = pagebuilder.CloneData(data)
	e.mu.Unlock()
	e.signal()
}

// DiscardChanges drops the pending entry for a section, reverting LiveData
// to the persisted payload. No network call.
func (e *Editor) DiscardChanges(id int64) {
	e.mu.Lock()
	_, had := e.pending[id]
	delete(e.pending, id)
	e.mu.Unlock()
	if had {
		e.signal()
		e.notify(LevelInfo, "discard", "Changes discarded.", id)
	}
}

// SaveOne persists the pending edit for one section. No-op when the section
// has no pending entry. On success the pending data is promoted into the
// persisted list and the entry removed; on failure the edit is preserved.
func (e *Editor) SaveOne(ctx context.Context, id int64) error {
	e.mu.Lock()
	data, ok := e.pending[id]
	if !ok {
		e.mu.Unlock()
		return nil
	}
	snapshot := pagebuilder.CloneData(data)
	gen := e.generation
	e.saving[id] = struct{}{}
	e.mu.Unlock()
	e.signal()

	updated, err := e.api.Update(ctx, id, client.UpdatePatch{ComponentData: snapshot})

	e.mu.Lock()
	delete(e.saving, id)
	if err != nil {
		e.mu.Unlock()
		e.signal()
		e.notify(LevelError, "save", client.UserFriendlyMessage(err), id)
		return err
	}
	if gen == e.generation {
		e.promoteLocked(id, updated.ComponentData)
		delete(e.pending, id)
	}
	e.mu.Unlock()

	e.signal()
	e.notify(LevelSuccess, "save", "Section saved.", id)
	return nil
}

// SaveAll snapshots the pending set and persists every entry concurrently.
// Outcomes reconcile independently: successes are promoted and cleared,
// failures stay pending. Best-effort batch, not a transaction.
func (e *Editor) SaveAll(ctx context.Context) error {
	e.mu.Lock()
	if len(e.pending) == 0 {
		e.mu.Unlock()
		e.notify(LevelInfo, "save-all", "No unsaved changes.", 0)
		return nil
	}
	snapshot := make(map[int64]map[string]any, len(e.pending))
	for id, data := range e.pending {
		snapshot[id] = pagebuilder.CloneData(data)
		e.saving[id] = struct{}{}
	}
	gen := e.generation
	e.savingAll = true
	e.mu.Unlock()
	e.signal()

	type outcome struct {
		id      int64
		section pagebuilder.Section
		err     error
	}
	results := make(chan outcome, len(snapshot))
	var wg sync.WaitGroup
	for id, data := range snapshot {
		wg.Add(1)
		go func(id int64, data map[string]any) {
			defer wg.Done()
			updated, err := e.api.Update(ctx, id, client.UpdatePatch{ComponentData: data})
			results <- outcome{id: id, section: updated, err: err}
		}(id, data)
	}
	wg.Wait()
	close(results)

	var succeeded, failed int
	e.mu.Lock()
	e.savingAll = false
	for res := range results {
		delete(e.saving, res.id)
		if res.err != nil {
			failed++
			continue
		}
		succeeded++
		if gen == e.generation {
			e.promoteLocked(res.id, res.section.ComponentData)
			delete(e.pending, res.id)
		}
	}
	e.mu.Unlock()
	e.signal()

	if failed > 0 {
		e.notify(LevelError, "save-all",
			fmt.Sprintf("Saved %d section(s), %d failed.", succeeded, failed), 0)
		return fmt.Errorf("save all: %d of %d sections failed", failed, succeeded+failed)
	}
	e.notify(LevelSuccess, "save-all", fmt.Sprintf("Saved %d section(s).", succeeded), 0)
	return nil
}

// ToggleVisibility flips is_active from the current persisted value and
// persists it immediately. Visibility is not a draft field: the pending set
// is bypassed entirely.
func (e *Editor) ToggleVisibility(ctx context.Context, id int64) error {
	e.mu.Lock()
	section, ok := e.findLocked(id)
	if !ok {
		e.mu.Unlock()
		err := fmt.Errorf("toggle visibility: unknown section %d", id)
		e.notify(LevelError, "visibility", "Section not found.", id)
		return err
	}
	next := !section.IsActive
	gen := e.generation
	e.mu.Unlock()

	updated, err := e.api.Update(ctx, id, client.UpdatePatch{IsActive: &next})
	if err != nil {
		e.notify(LevelError, "visibility", client.UserFriendlyMessage(err), id)
		return err
	}

	e.mu.Lock()
	if gen == e.generation {
		for i := range e.sections {
			if e.sections[i].ID == id {
				e.sections[i].IsActive = updated.IsActive
				e.sections[i].UpdatedAt = updated.UpdatedAt
				break
			}
		}
	}
	e.mu.Unlock()
	e.signal()

	if updated.IsActive {
		e.notify(LevelSuccess, "visibility", "Section shown.", id)
	} else {
		e.notify(LevelSuccess, "visibility", "Section hidden.", id)
	}
	return nil
}

// Duplicate requests server-side duplication, then reloads the whole page so
// the new row arrives with its server-assigned id and order. The state
// machine never synthesizes the new entity locally. Note that the reload
// clears any pending edits.
func (e *Editor) Duplicate(ctx context.Context, id int64) error {
	e.mu.Lock()
	e.duplicating[id] = struct{}{}
	e.mu.Unlock()
	e.signal()

	_, err := e.api.Duplicate(ctx, id)

	e.mu.Lock()
	delete(e.duplicating, id)
	e.mu.Unlock()
	e.signal()

	if err != nil {
		e.notify(LevelError, "duplicate", client.UserFriendlyMessage(err), id)
		return err
	}

	if err := e.Load(ctx); err != nil {
		return err
	}
	e.notify(LevelSuccess, "duplicate", "Section duplicated.", id)
	return nil
}

// DeleteSection removes a section permanently. Irreversible; there is no
// undo stack. On failure state is unchanged.
func (e *Editor) DeleteSection(ctx context.Context, id int64) error {
	e.mu.Lock()
	e.deleting[id] = struct{}{}
	e.mu.Unlock()
	e.signal()

	err := e.api.Delete(ctx, id)

	e.mu.Lock()
	delete(e.deleting, id)
	if err != nil {
		e.mu.Unlock()
		e.signal()
		e.notify(LevelError, "delete", client.UserFriendlyMessage(err), id)
		return err
	}
	for i := range e.sections {
		if e.sections[i].ID == id {
			e.sections = append(e.sections[:i], e.sections[i+1:]...)
			break
		}
	}
	delete(e.pending, id)
	e.mu.Unlock()

	e.signal()
	e.notify(LevelSuccess, "delete", "Section deleted.", id)
	return nil
}

// MoveSection swaps a section with its immediate neighbor and renumbers all
// orders to a dense 1..N sequence. The new ordering is applied locally first
// (zero-latency UI), then persisted as a complete replacement set. If
// persistence fails the optimistic state is not rolled back; a full reload
// resynchronizes to server ground truth instead. No-op at either boundary.
func (e *Editor) MoveSection(ctx context.Context, id int64, direction Direction) error {
	e.mu.Lock()
	index := -1
	for i := range e.sections {
		if e.sections[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		e.mu.Unlock()
		err := fmt.Errorf("move: unknown section %d", id)
		e.notify(LevelError, "reorder", "Section not found.", id)
		return err
	}

	neighbor := index - 1
	if direction == MoveDown {
		neighbor = index + 1
	}
	if neighbor < 0 || neighbor >= len(e.sections) {
		e.mu.Unlock()
		return nil
	}

	next := make([]pagebuilder.Section, len(e.sections))
	copy(next, e.sections)
	next[index], next[neighbor] = next[neighbor], next[index]
	for i := range next {
		next[i].ComponentOrder = i + 1
	}
	e.sections = next

	items := make([]pagebuilder.ReorderItem, len(next))
	for i, section := range next {
		items[i] = pagebuilder.ReorderItem{ID: section.ID, ComponentOrder: section.ComponentOrder}
	}
	e.mu.Unlock()
	e.signal()

	if err := e.api.Reorder(ctx, items); err != nil {
		e.notify(LevelError, "reorder", client.UserFriendlyMessage(err), id)
		// Resync rather than rollback: recomputing server truth is more
		// reliable than inverting the optimistic renumbering.
		if loadErr := e.Load(ctx); loadErr != nil {
			return errors.Join(err, loadErr)
		}
		return err
	}

	e.notify(LevelSuccess, "reorder", "Order updated.", id)
	return nil
}

// Sections returns a copy of the persisted section list in display order.
func (e *Editor) Sections() []pagebuilder.Section {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]pagebuilder.Section, len(e.sections))
	copy(out, e.sections)
	return out
}

// MergedComponents flattens the merged (persisted + pending) state into the
// shape the preview bridge pushes: full list, ordered, pending data taking
// precedence.
func (e *Editor) MergedComponents() []pagebuilder.Component {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]pagebuilder.Component, 0, len(e.sections))
	for _, section := range e.sections {
		data := section.ComponentData
		if pending, ok := e.pending[section.ID]; ok {
			data = pending
		}
		out = append(out, pagebuilder.Component{
			ID:     section.ID,
			Type:   section.ComponentType,
			Data:   pagebuilder.CloneData(data),
			Order:  section.ComponentOrder,
			Active: section.IsActive,
		})
	}
	return out
}

// HasPending reports whether a section has an unsaved edit.
func (e *Editor) HasPending(id int64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.pending[id]
	return ok
}

// PendingCount returns the number of sections with unsaved edits.
func (e *Editor) PendingCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.pending)
}

// IsLoading reports whether a Load is in flight.
func (e *Editor) IsLoading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

// IsSavingAll reports whether a SaveAll batch is in flight.
func (e *Editor) IsSavingAll() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.savingAll
}

// IsSaving reports whether a save for the given section is in flight.
func (e *Editor) IsSaving(id int64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.saving[id]
	return ok
}

// IsDeleting reports whether a delete for the given section is in flight.
func (e *Editor) IsDeleting(id int64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.deleting[id]
	return ok
}

// IsDuplicating reports whether a duplicate for the given section is in flight.
func (e *Editor) IsDuplicating(id int64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.duplicating[id]
	return ok
}

// findLocked returns the persisted section for id. Caller holds e.mu.
func (e *Editor) findLocked(id int64) (pagebuilder.Section, bool) {
	for _, section := range e.sections {
		if section.ID == id {
			return section, true
		}
	}
	return pagebuilder.Section{}, false
}

// promoteLocked replaces a section's persisted data. Caller holds e.mu.
func (e *Editor) promoteLocked(id int64, data map[string]any) {
	for i := range e.sections {
		if e.sections[i].ID == id {
			e.sections[i].ComponentData = pagebuilder.CloneData(data)
			return
		}
	}
}
