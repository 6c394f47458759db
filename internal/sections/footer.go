package sections

import "github.com/toolsuite/pagebuilder"

func footerDefinition() pagebuilder.Definition {
	return pagebuilder.Definition{
		Type:  "footer",
		Label: "Footer",
		Icon:  "⬓",
		DefaultData: map[string]any{
			"copyright":   "",
			"links":       []any{},
			"show_social": true,
		},
		Editor: footerEditor,
	}
}

func footerEditor(data map[string]any, onChange func(map[string]any)) *pagebuilder.Form {
	return pagebuilder.NewFormBuilder(data, onChange).
		Add("copyright", "Copyright line", pagebuilder.FieldText).
		Add("show_social", "Show social icons", pagebuilder.FieldBool).
		AddList("links", "Footer links", map[string]any{
			"label": "",
			"url":   "",
		}).
		Build()
}
