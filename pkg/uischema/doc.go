// Package uischema turns author-supplied UI schema documents into the
// resolved option bags widgets consume. Resolution is a pure merge of global
// defaults, the "ui:options" map and top-level "ui:*" keys; documents are
// loaded from JSON or YAML files.
package uischema
