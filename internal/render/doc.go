// Package render implements the Generator collaborator. It serializes a
// deck and its presentation hints into the final artifact file.
package render
