package plugin

import (
	"fmt"
	goplugin "plugin"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

// FactoryEntryPoint is the constructor a native plugin may export:
//
//	func NewAction() interface{ Execute(params string) error }
//
// Plugins without it must export EntryPoint instead.
const FactoryEntryPoint = "NewAction"

// loadNative opens a plugin built with -buildmode=plugin. The Go runtime
// keeps an opened plugin mapped for the life of the process, so a plugin
// exporting NewAction is the way to get per-step handler state.
func loadNative(path string) (Action, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPluginLoadFailed, err)
	}

	if sym, err := p.Lookup(FactoryEntryPoint); err == nil {
		newAction, ok := sym.(func() interface{ Execute(string) error })
		if !ok {
			return nil, fmt.Errorf("%w: %s has type %T", errors.ErrEntryPointMissing, FactoryEntryPoint, sym)
		}
		action := newAction()
		if action == nil {
			return nil, fmt.Errorf("%w: %s returned nil", errors.ErrPluginLoadFailed, FactoryEntryPoint)
		}
		return action, nil
	}

	sym, err := p.Lookup(EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: neither %s nor %s exported", errors.ErrEntryPointMissing, FactoryEntryPoint, EntryPoint)
	}
	fn, ok := sym.(func(string) error)
	if !ok {
		return nil, fmt.Errorf("%w: %s has type %T, want func(string) error", errors.ErrEntryPointMissing, EntryPoint, sym)
	}
	return ActionFunc(fn), nil
}
