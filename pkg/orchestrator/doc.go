// Package orchestrator wires form resolution (a model.Form or an OpenAPI
// component), transformers, decorators and theme selection to a registry of
// renderers behind a single Generate call.
package orchestrator
