package plugin

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-flowforge/internal/utils/errors"
	"github.com/deploymenttheory/go-flowforge/internal/utils/fsutil"
	"github.com/deploymenttheory/go-flowforge/internal/utils/osutil"
)

// DefaultSearchRoots are searched when no roots are configured
var DefaultSearchRoots = []string{"plugins", "./plugins", "../plugins"}

// ScriptExtension marks Go source plugins run through the interpreter
const ScriptExtension = ".go"

type loadFunc func(path string) (Action, error)

// Attempt records one failed way of producing a handler
type Attempt struct {
	Path string
	Err  error
}

// ResolutionError is returned when no source yields a handler for a type.
// It lists every attempt and unwraps to ErrPluginNotFound.
type ResolutionError struct {
	Type     string
	Attempts []Attempt
}

func (e *ResolutionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %s", errors.ErrPluginNotFound, e.Type)
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.Path, a.Err)
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error {
	return errors.ErrPluginNotFound
}

// Resolver produces a fresh Action for an action type name. Nothing is
// cached: each Resolve call constructs or loads a new handler.
type Resolver struct {
	registry   *Registry
	manifest   *Manifest
	roots      []string
	extensions []string
	loaders    map[string]loadFunc
}

// Option configures a Resolver
type Option func(*Resolver)

// WithManifest adds explicit type to file mappings and the manifest's
// search roots
func WithManifest(m *Manifest) Option {
	return func(r *Resolver) {
		r.manifest = m
	}
}

// WithSearchRoots replaces the default search roots
func WithSearchRoots(roots ...string) Option {
	return func(r *Resolver) {
		if len(roots) > 0 {
			r.roots = roots
		}
	}
}

// NewResolver builds a resolver over registry, which may be nil
func NewResolver(registry *Registry, opts ...Option) *Resolver {
	if registry == nil {
		registry = NewRegistry()
	}
	r := &Resolver{
		registry:   registry,
		roots:      DefaultSearchRoots,
		extensions: append(osutil.NativeModuleExtensions(), ScriptExtension),
		loaders:    map[string]loadFunc{ScriptExtension: loadScript},
	}
	for _, ext := range osutil.NativeModuleExtensions() {
		r.loaders[ext] = loadNative
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.manifest != nil && len(r.manifest.SearchRoots) > 0 {
		r.roots = append(append([]string{}, r.manifest.SearchRoots...), r.roots...)
	}
	r.roots = dedupeRoots(r.roots)
	return r
}

// Resolve returns a handler for typeName. Builtins are tried first, then the
// manifest entry, then each search candidate in order.
func (r *Resolver) Resolve(typeName string) (Action, error) {
	if strings.TrimSpace(typeName) == "" {
		return nil, fmt.Errorf("%w: empty action type", errors.ErrInvalidArgument)
	}
	resErr := &ResolutionError{Type: typeName}

	if factory, ok := r.registry.Lookup(typeName); ok {
		action, err := factory()
		if err == nil {
			return action, nil
		}
		resErr.Attempts = append(resErr.Attempts, Attempt{Path: "builtin:" + typeName, Err: err})
	}

	if path, ok := r.manifest.Path(typeName); ok {
		action, err := r.load(path)
		if err == nil {
			return action, nil
		}
		resErr.Attempts = append(resErr.Attempts, Attempt{Path: path, Err: err})
	}

	for _, path := range r.Candidates(typeName) {
		action, err := r.load(path)
		if err == nil {
			return action, nil
		}
		resErr.Attempts = append(resErr.Attempts, Attempt{Path: path, Err: err})
	}
	return nil, resErr
}

// Candidates lists the files searched for typeName, in search order
func (r *Resolver) Candidates(typeName string) []string {
	names := []string{typeName, "lib" + typeName}
	var paths []string
	for _, root := range r.roots {
		for _, name := range names {
			for _, ext := range r.extensions {
				paths = append(paths, filepath.Join(root, name+ext))
			}
		}
	}
	return paths
}

// Types lists the builtin and manifest type names, sorted
func (r *Resolver) Types() []string {
	seen := map[string]bool{}
	var types []string
	for _, name := range append(r.registry.Types(), r.manifest.Types()...) {
		if !seen[name] {
			seen[name] = true
			types = append(types, name)
		}
	}
	sort.Strings(types)
	return types
}

// SearchRoots returns the directories searched for plugin files
func (r *Resolver) SearchRoots() []string {
	return append([]string(nil), r.roots...)
}

func (r *Resolver) load(path string) (Action, error) {
	path = fsutil.ExpandAndNormalizePath(path)
	if !fsutil.FileExists(path) {
		return nil, fs.ErrNotExist
	}
	loader, ok := r.loaders[filepath.Ext(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errors.ErrUnsupportedLoader, filepath.Ext(path))
	}
	return loader(path)
}

func dedupeRoots(roots []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(roots))
	for _, root := range roots {
		clean := filepath.Clean(root)
		if seen[clean] {
			continue
		}
		seen[clean] = true
		out = append(out, clean)
	}
	return out
}
