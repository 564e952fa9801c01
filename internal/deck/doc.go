// Package deck implements the Transformer collaborator: it maps the
// semantic Document structure onto the Deck schema the generator
// consumes. The mapping is deterministic and purely structural; no
// content is invented or dropped beyond slide-splitting.
package deck
