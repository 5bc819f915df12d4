package schema

import "github.com/goliatone/go-formwidgets/pkg/model"

// CanExpand reports whether the user may add properties to an object: the
// schema must allow additional properties, ui options must not opt out and
// formData must still be below maxProperties.
func CanExpand(schema model.Schema, opts model.UIOptions, formData map[string]any) bool {
	if !schema.AdditionalProperties {
		return false
	}
	if opts.Expandable != nil && !*opts.Expandable {
		return false
	}
	if schema.MaxProperties != nil {
		return len(formData) < *schema.MaxProperties
	}
	return true
}
