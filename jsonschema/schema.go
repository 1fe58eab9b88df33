package jsonschema

// Schema is a minimal JSON Schema representation used to export command
// input declarations. Keep this struct small and extend incrementally.
type Schema struct {
	// Core
	Schema      string `json:"$schema,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	Default     any    `json:"default,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// String
	MinLength *int   `json:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty"`

	// Number
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Nullable values are exported as {"anyOf":[<schema>,{"type":"null"}]}.
	AnyOf []*Schema `json:"anyOf,omitempty"`
}

// Nullable wraps s so that JSON null is accepted as well.
func Nullable(s *Schema) *Schema {
	if s == nil {
		s = &Schema{}
	}
	return &Schema{AnyOf: []*Schema{s, {Type: "null"}}}
}

// IntPtr and FloatPtr help filling optional bounds.
func IntPtr(n int) *int { return &n }

func FloatPtr(f float64) *float64 { return &f }

// Draft is the dialect URI set on exported root documents.
const Draft = "https://json-schema.org/draft/2020-12/schema"
