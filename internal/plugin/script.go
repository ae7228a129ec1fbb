package plugin

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
)

// loadScript interprets a Go source plugin. Every call builds a new
// interpreter, so no state survives between step invocations.
func loadScript(path string) (Action, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrFileReadError, err)
	}
	if len(strings.TrimSpace(string(code))) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", errors.ErrPluginLoadFailed, path)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPluginLoadFailed, err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return nil, fmt.Errorf("%w: interpret: %v", errors.ErrPluginLoadFailed, err)
	}
	fnValue, err := i.Eval(EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must define %s(params string) error", errors.ErrEntryPointMissing, path, EntryPoint)
	}
	return scriptAction(fnValue)
}

func scriptAction(value reflect.Value) (Action, error) {
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s is not a function", errors.ErrEntryPointMissing, EntryPoint)
	}
	if fn, ok := value.Interface().(func(string) error); ok {
		return ActionFunc(fn), nil
	}

	t := value.Type()
	errorType := reflect.TypeOf((*error)(nil)).Elem()
	if t.NumIn() != 1 || t.In(0).Kind() != reflect.String || t.NumOut() != 1 || !t.Out(0).Implements(errorType) {
		return nil, fmt.Errorf("%w: %s has signature %s, want func(string) error", errors.ErrEntryPointMissing, EntryPoint, t)
	}
	return ActionFunc(func(params string) error {
		out := value.Call([]reflect.Value{reflect.ValueOf(params)})
		if out[0].IsNil() {
			return nil
		}
		return out[0].Interface().(error)
	}), nil
}
