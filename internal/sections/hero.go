package sections

import "github.com/toolsuite/pagebuilder"

func heroDefinition() pagebuilder.Definition {
	return pagebuilder.Definition{
		Type:  "hero",
		Label: "Hero Banner",
		Icon:  "🏔",
		DefaultData: map[string]any{
			"title":       "Welcome",
			"subtitle":    "",
			"image":       "",
			"button_text": "",
			"button_link": "",
			"show_search": false,
		},
		Editor: heroEditor,
	}
}

func heroEditor(data map[string]any, onChange func(map[string]any)) *pagebuilder.Form {
	return pagebuilder.NewFormBuilder(data, onChange).
		Add("title", "Title", pagebuilder.FieldText).
		Add("subtitle", "Subtitle", pagebuilder.FieldTextarea).
		Add("image", "Background image", pagebuilder.FieldImage).
		Add("button_text", "Button text", pagebuilder.FieldText).
		Add("button_link", "Button link", pagebuilder.FieldText).
		Add("show_search", "Show search bar", pagebuilder.FieldBool).
		Build()
}
