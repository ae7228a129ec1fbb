// Package plugin maps action type names to handlers. Handlers come from
// builtin factories, from files named in a plugin manifest, or from a search
// of the configured plugin directories.
package plugin

// EntryPoint is the symbol every plugin file must export:
//
//	func Execute(params string) error
const EntryPoint = "Execute"

// Action performs one workflow step. params is the step's parameter text,
// either a plain string or a JSON document.
type Action interface {
	Execute(params string) error
}

// ActionFunc adapts a function to the Action interface
type ActionFunc func(params string) error

// Execute calls f(params)
func (f ActionFunc) Execute(params string) error {
	return f(params)
}

// Factory builds a fresh Action for a single step invocation
type Factory func() (Action, error)
