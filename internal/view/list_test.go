package view

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolsuite/pagebuilder"
	"github.com/toolsuite/pagebuilder/internal/client"
	"github.com/toolsuite/pagebuilder/internal/editor"
)

type stubAPI struct {
	sections  []pagebuilder.Section
	deleteErr error
	deleted   []int64
}

func (s *stubAPI) ListByPage(ctx context.Context, pageKey string) ([]pagebuilder.Section, error) {
	return s.sections, nil
}

func (s *stubAPI) Update(ctx context.Context, id int64, patch client.UpdatePatch) (pagebuilder.Section, error) {
	for _, sec := range s.sections {
		if sec.ID == id {
			sec.ComponentData = patch.ComponentData
			return sec, nil
		}
	}
	return pagebuilder.Section{}, errors.New("unknown id")
}

func (s *stubAPI) Duplicate(ctx context.Context, id int64) (pagebuilder.Section, error) {
	return pagebuilder.Section{}, errors.New("not scripted")
}

func (s *stubAPI) Delete(ctx context.Context, id int64) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubAPI) Reorder(ctx context.Context, items []pagebuilder.ReorderItem) error { return nil }

func testRegistry() *pagebuilder.Registry {
	return pagebuilder.NewRegistry(pagebuilder.Definition{
		Type:  "hero",
		Label: "Hero Banner",
		Icon:  "H",
		Editor: func(data map[string]any, onChange func(map[string]any)) *pagebuilder.Form {
			return pagebuilder.NewFormBuilder(data, onChange).
				Add("title", "Title", pagebuilder.FieldText).
				Build()
		},
	})
}

func fixture(t *testing.T) (*ListController, *editor.Editor, *stubAPI) {
	t.Helper()
	api := &stubAPI{sections: []pagebuilder.Section{
		{ID: 1, ComponentType: "hero", ComponentOrder: 1,
			ComponentData: map[string]any{"title": "Welcome"}, IsActive: true},
		{ID: 2, ComponentType: "testimonials", ComponentOrder: 2,
			ComponentData: map[string]any{}, IsActive: true},
		{ID: 3, ComponentType: "hero", ComponentOrder: 3,
			ComponentData: map[string]any{"title": "Bottom"}, IsActive: false},
	}}
	ed := editor.New("home", api, editor.NotifierFunc(func(editor.Notice) {}))
	require.NoError(t, ed.Load(context.Background()))
	return NewListController(ed, testRegistry()), ed, api
}

func TestRowsDisplayModel(t *testing.T) {
	ctrl, ed, _ := fixture(t)
	ed.SetFieldData(1, map[string]any{"title": "edited"})

	rows := ctrl.Rows()
	require.Len(t, rows, 3)

	assert.Equal(t, "Hero Banner", rows[0].Label)
	assert.Equal(t, "H", rows[0].Icon)
	assert.True(t, rows[0].Dirty)
	assert.True(t, rows[0].HasEditor)
	assert.False(t, rows[0].CanMoveUp, "first row cannot move up")
	assert.True(t, rows[0].CanMoveDown)

	// Unregistered type renders with fallbacks and no editor.
	assert.Equal(t, "testimonials", rows[1].Label)
	assert.Equal(t, pagebuilder.FallbackIcon, rows[1].Icon)
	assert.False(t, rows[1].HasEditor)
	assert.True(t, rows[1].CanMoveUp)
	assert.True(t, rows[1].CanMoveDown)

	assert.False(t, rows[2].CanMoveDown, "last row cannot move down")
	assert.False(t, rows[2].Dirty)
}

func TestToggleExpandOneRowAtATime(t *testing.T) {
	ctrl, _, _ := fixture(t)

	ctrl.ToggleExpand(1)
	assert.Equal(t, int64(1), ctrl.ExpandedID())

	// Expanding another row collapses the first.
	ctrl.ToggleExpand(2)
	assert.Equal(t, int64(2), ctrl.ExpandedID())

	rows := ctrl.Rows()
	assert.False(t, rows[0].Expanded)
	assert.True(t, rows[1].Expanded)

	// Toggling the open row collapses it.
	ctrl.ToggleExpand(2)
	assert.Zero(t, ctrl.ExpandedID())
}

func TestEditorFormRoutesChangesToEditor(t *testing.T) {
	ctrl, ed, _ := fixture(t)

	form := ctrl.EditorForm(1, "hero")
	require.NotNil(t, form)

	title, ok := form.Field("title")
	require.True(t, ok)
	assert.Equal(t, "Welcome", title.Value)

	title.Set("Changed")
	assert.True(t, ed.HasPending(1))
	assert.Equal(t, "Changed", ed.LiveData(1)["title"])
}

func TestEditorFormReadsPendingData(t *testing.T) {
	ctrl, ed, _ := fixture(t)
	ed.SetFieldData(1, map[string]any{"title": "draft"})

	form := ctrl.EditorForm(1, "hero")
	require.NotNil(t, form)
	title, _ := form.Field("title")
	assert.Equal(t, "draft", title.Value)
}

func TestEditorFormNilForUnregisteredType(t *testing.T) {
	ctrl, _, _ := fixture(t)
	assert.Nil(t, ctrl.EditorForm(2, "testimonials"))
}

func TestDeleteConfirmFlow(t *testing.T) {
	ctrl, ed, api := fixture(t)
	ctrl.ToggleExpand(3)

	ctrl.RequestDelete(3)
	rows := ctrl.Rows()
	assert.True(t, rows[2].ConfirmingDelete)
	assert.Empty(t, api.deleted, "arming does not delete")

	require.NoError(t, ctrl.ConfirmDelete(context.Background()))
	assert.Equal(t, []int64{3}, api.deleted)
	assert.Len(t, ed.Sections(), 2)
	assert.Zero(t, ctrl.ExpandedID(), "deleting the expanded row collapses it")
}

func TestCancelDelete(t *testing.T) {
	ctrl, _, api := fixture(t)

	ctrl.RequestDelete(1)
	ctrl.CancelDelete()

	require.NoError(t, ctrl.ConfirmDelete(context.Background()))
	assert.Empty(t, api.deleted, "cancelled confirm never reaches the network")
}

func TestConfirmDeleteWithoutArmIsNoop(t *testing.T) {
	ctrl, _, api := fixture(t)
	require.NoError(t, ctrl.ConfirmDelete(context.Background()))
	assert.Empty(t, api.deleted)
}

func TestConfirmDeleteFailureKeepsRow(t *testing.T) {
	ctrl, ed, api := fixture(t)
	api.deleteErr = &client.APIError{Operation: "delete", Message: "in use"}

	ctrl.RequestDelete(1)
	err := ctrl.ConfirmDelete(context.Background())
	require.Error(t, err)
	assert.Len(t, ed.Sections(), 3)
}
