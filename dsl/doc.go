// Package dsl declares command input schemas.
//
// Overview
//   - Build/MustBuild assemble a top-level schema from Required(...) and
//     Optional(...) blocks. The result implements mutations.Schema.
//   - Field constructors: String, Integer, Float, Boolean, Time, Any, Array,
//     Hash, Custom and Model[T]. Each returns a filter whose chain methods set
//     per-type options (MaxLength, Min, In, Matches, AllowNil, Default, ...).
//   - Hash and Array nest: errors below them are reported at dotted paths
//     such as "address.city" and "items.0.sku".
//   - JSONSchema() on any filter projects the declaration for export.
//
// Filtering happens in two passes over the declarations. The coercion pass
// drops undeclared keys, applies defaults and converts raw values to the
// declared type; values it cannot convert are kept as mismatches. The
// validation pass then walks the coerced tree in declaration order and records
// every violation (required, invalid, nils, empty, length, range, in, format,
// or a custom code) without stopping at the first one.
//
// Example
//
//	schema := dsl.MustBuild(
//	    dsl.Required(
//	        dsl.String("name").MaxLength(10),
//	        dsl.Integer("amount"),
//	    ),
//	    dsl.Optional(
//	        dsl.String("email").Matches(emailRE),
//	        dsl.Array("tags", dsl.String("")).MaxLength(5),
//	    ),
//	)
//
// File layout
//   - filter.go: Filter interface, shared options, blocks and the validator entry point.
//   - primitives.go / number.go / time.go: scalar filters.
//   - array.go / hash.go: nested filters, Build/MustBuild.
//   - custom.go: caller-supplied coercion, Model[T].
//   - yamlschema/: declarations loaded from YAML documents.
package dsl
