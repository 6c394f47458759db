package sections

import "github.com/toolsuite/pagebuilder"

func ctaDefinition() pagebuilder.Definition {
	return pagebuilder.Definition{
		Type:  "cta",
		Label: "Call to Action",
		Icon:  "➤",
		DefaultData: map[string]any{
			"heading":     "Ready to get started?",
			"body":        "",
			"button_text": "Get started",
			"button_link": "/",
			"style":       "primary",
		},
		Editor: ctaEditor,
	}
}

func ctaEditor(data map[string]any, onChange func(map[string]any)) *pagebuilder.Form {
	return pagebuilder.NewFormBuilder(data, onChange).
		Add("heading", "Heading", pagebuilder.FieldText).
		Add("body", "Body", pagebuilder.FieldTextarea).
		Add("button_text", "Button text", pagebuilder.FieldText).
		Add("button_link", "Button link", pagebuilder.FieldText).
		Add("style", "Style", pagebuilder.FieldText).
		Build()
}
