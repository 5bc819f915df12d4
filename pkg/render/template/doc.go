// Package template defines the template engine seam used by the HTML
// renderers and a Provider that serves the object layout's host templates
// (title, description and add button) from that engine, optionally themed
// through go-theme.
package template
