package sections

import "github.com/toolsuite/pagebuilder"

func faqDefinition() pagebuilder.Definition {
	return pagebuilder.Definition{
		Type:  "faq",
		Label: "FAQ",
		Icon:  "?",
		DefaultData: map[string]any{
			"title": "Frequently Asked Questions",
			"items": []any{},
		},
		Editor: faqEditor,
	}
}

func faqEditor(data map[string]any, onChange func(map[string]any)) *pagebuilder.Form {
	return pagebuilder.NewFormBuilder(data, onChange).
		Add("title", "Section title", pagebuilder.FieldText).
		AddList("items", "Questions", map[string]any{
			"question": "",
			"answer":   "",
		}).
		Build()
}
