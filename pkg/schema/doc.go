// Package schema builds the widget schema descriptors from OpenAPI documents
// and implements the rule deciding whether an object accepts additional
// properties.
package schema
