package sections

import "github.com/toolsuite/pagebuilder"

func galleryDefinition() pagebuilder.Definition {
	return pagebuilder.Definition{
		Type:  "gallery",
		Label: "Image Gallery",
		Icon:  "🖼",
		DefaultData: map[string]any{
			"title":   "",
			"columns": float64(3),
			"images":  []any{},
		},
		Editor: galleryEditor,
	}
}

func galleryEditor(data map[string]any, onChange func(map[string]any)) *pagebuilder.Form {
	return pagebuilder.NewFormBuilder(data, onChange).
		Add("title", "Title", pagebuilder.FieldText).
		Add("columns", "Columns", pagebuilder.FieldNumber).
		AddList("images", "Images", map[string]any{
			"src":     "",
			"alt":     "",
			"caption": "",
		}).
		Build()
}
