// Package model defines the contracts shared between the host form engine and
// the rendering primitives: the schema descriptor, the resolved UI options bag,
// widget props and callbacks, and the pre-rendered elements an object layout
// partitions. Values cross these contracts already translated into domain
// space; UI indices never leak past a widget.
package model
