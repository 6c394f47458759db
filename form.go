package pagebuilder

// FieldKind tells the admin UI which widget to render for a field. The form
// model itself is headless: it only maps data in and emits changed data out.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldMarkdown FieldKind = "markdown"
	FieldBool     FieldKind = "bool"
	FieldNumber   FieldKind = "number"
	FieldImage    FieldKind = "image"
	FieldList     FieldKind = "list"
)

// Field is one editable entry in a section form. Set replaces the field's
// value in a fresh copy of the payload and reports it through the form's
// onChange callback; the original payload is never mutated.
type Field struct {
	Name  string
	Label string
	Kind  FieldKind
	Value any
	Set   func(value any)

	// List is populated only for FieldList fields.
	List *ListOps
}

// ListOps edits an ordered list of sub-items (e.g. feature entries, FAQ
// rows). All three operations follow the same whole-object replacement
// discipline as Field.Set.
type ListOps struct {
	Items      []map[string]any
	Add        func()
	Remove     func(index int)
	UpdateItem func(index int, item map[string]any)
}

// Form is the headless editor surface for one section's data payload.
type Form struct {
	Fields []Field
}

// Field looks up a field by name.
func (f *Form) Field(name string) (Field, bool) {
	for _, fld := range f.Fields {
		if fld.Name == name {
			return fld, true
		}
	}
	return Field{}, false
}

// FormBuilder assembles a Form for a data payload. Section modules use it so
// every field mutation flows through one clone-then-replace path.
type FormBuilder struct {
	data     map[string]any
	onChange func(map[string]any)
	// transform lets a module post-process the replacement payload before it
	// is emitted (e.g. rendering markdown into a derived field).
	transform func(map[string]any) map[string]any
	form      *Form
}

// NewFormBuilder starts a form over the given payload. onChange may be nil,
// in which case edits are dropped (useful for read-only rendering).
func NewFormBuilder(data map[string]any, onChange func(map[string]any)) *FormBuilder {
	return &FormBuilder{data: data, onChange: onChange, form: &Form{}}
}

// Transform registers a payload post-processor applied to every emitted
// replacement.
func (b *FormBuilder) Transform(fn func(map[string]any) map[string]any) *FormBuilder {
	b.transform = fn
	return b
}

func (b *FormBuilder) emit(next map[string]any) {
	if b.transform != nil {
		next = b.transform(next)
	}
	if b.onChange != nil {
		b.onChange(next)
	}
}

func (b *FormBuilder) setValue(name string, value any) {
	next := CloneData(b.data)
	next[name] = value
	b.emit(next)
}

// Add registers a scalar field.
func (b *FormBuilder) Add(name, label string, kind FieldKind) *FormBuilder {
	b.form.Fields = append(b.form.Fields, Field{
		Name:  name,
		Label: label,
		Kind:  kind,
		Value: b.data[name],
		Set:   func(value any) { b.setValue(name, value) },
	})
	return b
}

// AddList registers an ordered list field whose items default to newItem.
func (b *FormBuilder) AddList(name, label string, newItem map[string]any) *FormBuilder {
	items := listItems(b.data[name])

	replaceItems := func(next []map[string]any) {
		payload := CloneData(b.data)
		generic := make([]any, len(next))
		for i, item := range next {
			generic[i] = item
		}
		payload[name] = generic
		b.emit(payload)
	}

	ops := &ListOps{
		Items: items,
		Add: func() {
			next := append(cloneItems(items), CloneData(newItem))
			replaceItems(next)
		},
		Remove: func(index int) {
			if index < 0 || index >= len(items) {
				return
			}
			next := cloneItems(items)
			next = append(next[:index], next[index+1:]...)
			replaceItems(next)
		},
		UpdateItem: func(index int, item map[string]any) {
			if index < 0 || index >= len(items) {
				return
			}
			next := cloneItems(items)
			next[index] = CloneData(item)
			replaceItems(next)
		},
	}

	b.form.Fields = append(b.form.Fields, Field{
		Name:  name,
		Label: label,
		Kind:  FieldList,
		Value: b.data[name],
		List:  ops,
	})
	return b
}

// Build returns the assembled form.
func (b *FormBuilder) Build() *Form {
	return b.form
}

// listItems normalizes a JSON list value into item maps, skipping entries
// that are not objects.
func listItems(value any) []map[string]any {
	raw, ok := value.([]any)
	if !ok {
		// Already-typed lists appear when defaults are authored in Go.
		if typed, ok := value.([]map[string]any); ok {
			return cloneItems(typed)
		}
		return nil
	}
	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if item, ok := entry.(map[string]any); ok {
			items = append(items, item)
		}
	}
	return items
}

func cloneItems(items []map[string]any) []map[string]any {
	out := make([]map[string]any, len(items))
	for i, item := range items {
		out[i] = CloneData(item)
	}
	return out
}
