// Package sections bundles the built-in section type modules. Each module is
// a self-contained data shape plus a pure form editor; adding a type means
// writing one module and one registry entry, nothing else.
package sections

import "github.com/toolsuite/pagebuilder"

// BuiltinRegistry returns the registry of all section types this build knows
// about. Persisted data may still reference other types; the registry's
// fallback paths keep those rows editable-but-inert instead of fatal.
func BuiltinRegistry() *pagebuilder.Registry {
	return pagebuilder.NewRegistry(
		heroDefinition(),
		featuresDefinition(),
		richtextDefinition(),
		faqDefinition(),
		ctaDefinition(),
		galleryDefinition(),
		footerDefinition(),
	)
}
