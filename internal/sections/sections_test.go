package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolsuite/pagebuilder"
)

func TestBuiltinRegistryTypes(t *testing.T) {
	reg := BuiltinRegistry()

	for _, typeTag := range []string{"hero", "features", "richtext", "faq", "cta", "gallery", "footer"} {
		def, ok := reg.Get(typeTag)
		require.True(t, ok, "missing builtin type %q", typeTag)
		assert.NotEmpty(t, def.Label)
		assert.NotEmpty(t, def.Icon)
		assert.NotNil(t, def.Editor)
		assert.NotNil(t, def.DefaultData)
	}
}

func TestEveryEditorBuildsFromDefaults(t *testing.T) {
	for _, def := range BuiltinRegistry().List() {
		t.Run(def.Type, func(t *testing.T) {
			form := def.Editor(pagebuilder.CloneData(def.DefaultData), func(map[string]any) {})
			require.NotNil(t, form)
			assert.NotEmpty(t, form.Fields)
		})
	}
}

func TestRichtextDerivesHTMLOnEdit(t *testing.T) {
	def, ok := BuiltinRegistry().Get("richtext")
	require.True(t, ok)

	var emitted map[string]any
	form := def.Editor(pagebuilder.CloneData(def.DefaultData), func(next map[string]any) {
		emitted = next
	})

	body, ok := form.Field("body")
	require.True(t, ok)
	body.Set("# Hello\n\nSome *emphasis*.")

	require.NotNil(t, emitted)
	assert.Equal(t, "# Hello\n\nSome *emphasis*.", emitted["body"])
	html, _ := emitted["html"].(string)
	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "<em>emphasis</em>")
}

func TestRichtextGFMTables(t *testing.T) {
	def, _ := BuiltinRegistry().Get("richtext")

	var emitted map[string]any
	form := def.Editor(map[string]any{"body": ""}, func(next map[string]any) { emitted = next })

	body, _ := form.Field("body")
	body.Set("| a | b |\n|---|---|\n| 1 | 2 |")

	html, _ := emitted["html"].(string)
	assert.Contains(t, html, "<table>")
}

func TestFeaturesListEditing(t *testing.T) {
	def, ok := BuiltinRegistry().Get("features")
	require.True(t, ok)

	var emitted map[string]any
	form := def.Editor(pagebuilder.CloneData(def.DefaultData), func(next map[string]any) {
		emitted = next
	})

	items, ok := form.Field("items")
	require.True(t, ok)
	require.NotNil(t, items.List)
	require.Len(t, items.List.Items, 1)

	items.List.Add()

	require.NotNil(t, emitted)
	list := emitted["items"].([]any)
	require.Len(t, list, 2)
	added := list[1].(map[string]any)
	assert.Equal(t, "", added["icon"])
	assert.Equal(t, "", added["title"])
	assert.Equal(t, "", added["description"])
}

func TestFaqEditorRoundTrip(t *testing.T) {
	def, ok := BuiltinRegistry().Get("faq")
	require.True(t, ok)

	data := map[string]any{
		"title": "FAQ",
		"items": []any{
			map[string]any{"question": "Q1", "answer": "A1"},
			map[string]any{"question": "Q2", "answer": "A2"},
		},
	}

	var emitted map[string]any
	form := def.Editor(data, func(next map[string]any) { emitted = next })

	items, ok := form.Field("items")
	require.True(t, ok)
	require.NotNil(t, items.List)

	items.List.UpdateItem(1, map[string]any{"question": "Q2 revised", "answer": "A2"})

	list := emitted["items"].([]any)
	require.Len(t, list, 2)
	assert.Equal(t, "Q1", list[0].(map[string]any)["question"])
	assert.Equal(t, "Q2 revised", list[1].(map[string]any)["question"])
}

func TestHeroEditorFields(t *testing.T) {
	def, ok := BuiltinRegistry().Get("hero")
	require.True(t, ok)

	form := def.Editor(pagebuilder.CloneData(def.DefaultData), nil)
	for _, name := range []string{"title", "subtitle"} {
		_, ok := form.Field(name)
		assert.True(t, ok, "hero form missing %q", name)
	}
}
