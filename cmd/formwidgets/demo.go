package main

import (
	"github.com/goliatone/go-formwidgets/components/timezones"
	"github.com/goliatone/go-formwidgets/pkg/model"
)

// demoForm is rendered when no --form is given. It touches every built-in
// widget: an enum select, a timezone autocomplete, free text and an
// expandable object behind the optional group.
func demoForm() model.Form {
	return model.Form{
		ID:          "shipping",
		Title:       "Shipping",
		Description: "Where and how should we deliver?",
		Schema: model.Schema{
			Type: model.FieldTypeObject,
		},
		UI: map[string]any{
			"ui:options": map[string]any{
				"optionalIndex": 3,
				"optionalTitle": "Extras",
			},
		},
		Fields: []model.Field{
			{
				Name:     "size",
				Label:    "Parcel size",
				Required: true,
				Schema: model.Schema{
					Type:      model.FieldTypeString,
					Enum:      []any{"s", "m", "l"},
					EnumNames: []string{"Small", "Medium", "Large"},
				},
			},
			{
				Name:  "timezone",
				Label: "Delivery timezone",
				Schema: model.Schema{
					Type: model.FieldTypeString,
				},
				UI: map[string]any{
					"ui:autocompleteType": timezones.Kind,
				},
			},
			{
				Name:        "notes",
				Label:       "Notes",
				Placeholder: "Leave at the door",
				Schema: model.Schema{
					Type: model.FieldTypeString,
				},
			},
			{
				Name:  "meta",
				Label: "Metadata",
				Schema: model.Schema{
					Type:                 model.FieldTypeObject,
					AdditionalProperties: true,
				},
			},
		},
	}
}
