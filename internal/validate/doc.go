// Package validate implements the Validator collaborator: structural
// checks of a deck against its selected template. The rules catch decks
// that would generate broken or useless artifacts; content-level rules
// (spelling, style) are out of scope.
package validate
