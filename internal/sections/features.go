package sections

import "github.com/toolsuite/pagebuilder"

// features is the canonical list-valued module: an ordered list of feature
// entries with add/remove/update, every change a whole-object replacement.
func featuresDefinition() pagebuilder.Definition {
	return pagebuilder.Definition{
		Type:  "features",
		Label: "Feature Grid",
		Icon:  "▤",
		DefaultData: map[string]any{
			"title": "Features",
			"items": []any{
				map[string]any{"icon": "⚡", "title": "Fast", "description": ""},
			},
		},
		Editor: featuresEditor,
	}
}

func featuresEditor(data map[string]any, onChange func(map[string]any)) *pagebuilder.Form {
	return pagebuilder.NewFormBuilder(data, onChange).
		Add("title", "Section title", pagebuilder.FieldText).
		AddList("items", "Features", map[string]any{
			"icon":        "",
			"title":       "",
			"description": "",
		}).
		Build()
}
