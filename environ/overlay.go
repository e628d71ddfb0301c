package environ

import (
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/iconoclast/childprocess/errors"
)

// Overlay is a set of environment edits applied on top of a snapshot.
// The zero value is not usable; call New.
type Overlay struct {
	fold    bool
	entries map[string]entry
}

type entry struct {
	name  string
	value string
	unset bool
}

// Option configures an Overlay.
type Option func(*Overlay)

// WithCaseFolding overrides the host's variable-name case sensitivity.
func WithCaseFolding(fold bool) Option {
	return func(o *Overlay) { o.fold = fold }
}

// New creates an empty overlay using the host's case rules.
func New(opts ...Option) *Overlay {
	o := &Overlay{
		fold:    runtime.GOOS == "windows",
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Parse builds an overlay from KEY=VALUE assignments followed by names to
// unset, the form command lines and configuration files use.
func Parse(set, unset []string, opts ...Option) (*Overlay, error) {
	o := New(opts...)
	for _, kv := range set {
		name, value, ok := Split(kv)
		if !ok {
			return nil, errors.InvalidInput("env", "expected KEY=VALUE, got "+kv)
		}
		if err := o.Set(name, value); err != nil {
			return nil, err
		}
	}
	for _, name := range unset {
		if err := o.Unset(name); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Set overrides name with value in the child. An empty value is kept as an
// empty variable; use Unset to remove a variable.
func (o *Overlay) Set(name, value string) error {
	if err := checkName(name); err != nil {
		return err
	}
	if strings.IndexByte(value, 0) >= 0 {
		return errors.InvalidInput(name, "environment value contains a NUL byte")
	}
	o.entries[o.key(name)] = entry{name: name, value: value}
	return nil
}

// Unset removes name from the child's environment even if the parent has it.
func (o *Overlay) Unset(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	o.entries[o.key(name)] = entry{name: name, unset: true}
	return nil
}

// Lookup reports the edit recorded for name. ok is false when the overlay
// has no edit for name; unset is true when the edit removes the variable.
func (o *Overlay) Lookup(name string) (value string, unset, ok bool) {
	e, ok := o.entries[o.key(name)]
	if !ok {
		return "", false, false
	}
	return e.value, e.unset, true
}

// Len returns the number of recorded edits.
func (o *Overlay) Len() int {
	return len(o.entries)
}

// Names returns the names that have an edit, sorted.
func (o *Overlay) Names() []string {
	names := make([]string, 0, len(o.entries))
	for _, e := range o.entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy of the overlay.
func (o *Overlay) Clone() *Overlay {
	c := &Overlay{fold: o.fold, entries: make(map[string]entry, len(o.entries))}
	for k, e := range o.entries {
		c.entries[k] = e
	}
	return c
}

// Apply returns base with the overlay's edits applied. base is not
// modified. Entries keep their original order; variables only present in
// the overlay are appended sorted by name.
func (o *Overlay) Apply(base []string) []string {
	out := make([]string, 0, len(base)+len(o.entries))
	seen := make(map[string]bool, len(o.entries))

	for _, kv := range base {
		name, _, ok := Split(kv)
		if !ok {
			out = append(out, kv)
			continue
		}
		k := o.key(name)
		e, edited := o.entries[k]
		if !edited {
			out = append(out, kv)
			continue
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		if !e.unset {
			out = append(out, e.name+"="+e.value)
		}
	}

	added := make([]string, 0, len(o.entries))
	for k, e := range o.entries {
		if !seen[k] && !e.unset {
			added = append(added, k)
		}
	}
	sort.Strings(added)
	for _, k := range added {
		e := o.entries[k]
		out = append(out, e.name+"="+e.value)
	}
	return out
}

// Environ applies the overlay to the parent's environment as it is right now.
func (o *Overlay) Environ() []string {
	return o.Apply(os.Environ())
}

func (o *Overlay) key(name string) string {
	if o.fold {
		return strings.ToUpper(name)
	}
	return name
}

func checkName(name string) error {
	if name == "" {
		return errors.InvalidInput("name", "environment variable name is empty")
	}
	if strings.IndexByte(name, 0) >= 0 {
		return errors.InvalidInput(name, "environment variable name contains a NUL byte")
	}
	if strings.IndexByte(name, '=') >= 0 {
		return errors.InvalidInput(name, "environment variable name contains '='")
	}
	return nil
}
