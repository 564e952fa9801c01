// Package template implements the TemplateSelector collaborator: a small
// catalog of built-in deck templates and a selector that picks one based
// on the deck's content. Selection never fails; an unknown override falls
// back to the default template rather than aborting a run over styling.
package template
