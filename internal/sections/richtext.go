package sections

import (
	"bytes"
	"log"

	"github.com/toolsuite/pagebuilder"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// richtext stores markdown source and a derived "html" field so the preview
// surface renders without a markdown engine of its own. The derived field is
// recomputed on every change; editors never touch it directly.
func richtextDefinition() pagebuilder.Definition {
	return pagebuilder.Definition{
		Type:  "richtext",
		Label: "Rich Text",
		Icon:  "¶",
		DefaultData: map[string]any{
			"title": "",
			"body":  "",
			"html":  "",
		},
		Editor: richtextEditor,
	}
}

func richtextEditor(data map[string]any, onChange func(map[string]any)) *pagebuilder.Form {
	return pagebuilder.NewFormBuilder(data, onChange).
		Transform(renderBody).
		Add("title", "Title", pagebuilder.FieldText).
		Add("body", "Body (markdown)", pagebuilder.FieldMarkdown).
		Build()
}

// renderBody refreshes the derived html field from the markdown body.
func renderBody(data map[string]any) map[string]any {
	body, _ := data["body"].(string)
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		log.Printf("[Sections] richtext render failed: %v", err)
		return data
	}
	data["html"] = buf.String()
	return data
}
