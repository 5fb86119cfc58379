// Package sgrgo is a schema-guided reasoning agent loop: a language model is
// driven through structured decision steps that resolve to typed business
// actions against an in-memory record store.
package sgrgo

// Version is the current version of sgr-go.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
