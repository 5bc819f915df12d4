package components

// Canonical component names used by the vanilla renderer and default
// registry. They match the widget names resolved by pkg/widgets.
const (
	NameSelect       = "select"
	NameAutocomplete = "autocomplete"
	NameObject       = "object"
	NameText         = "text"
)
