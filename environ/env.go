package environ

import (
	"sort"
	"strings"
)

// Split separates a NAME=value entry. A leading '=' belongs to the name, as
// in the per-drive "=C:=C:\dir" entries Windows keeps in its block.
func Split(kv string) (name, value string, ok bool) {
	i := strings.IndexByte(kv[min(1, len(kv)):], '=')
	if i < 0 {
		return "", "", false
	}
	i += min(1, len(kv))
	return kv[:i], kv[i+1:], true
}

// ToMap converts NAME=value entries to a map. Later duplicates win and
// malformed entries are skipped.
func ToMap(env []string) map[string]string {
	m := make(map[string]string, len(env))
	for _, kv := range env {
		if name, value, ok := Split(kv); ok {
			m[name] = value
		}
	}
	return m
}

// FromMap converts a map to NAME=value entries sorted by name.
func FromMap(m map[string]string) []string {
	env := make([]string, 0, len(m))
	for name, value := range m {
		env = append(env, name+"="+value)
	}
	sort.Strings(env)
	return env
}

// SortFold returns a copy of env ordered by upper-cased name, the order
// CreateProcess expects for an explicit environment block.
func SortFold(env []string) []string {
	out := append([]string(nil), env...)
	sort.SliceStable(out, func(i, j int) bool {
		ni, _, _ := Split(out[i])
		nj, _, _ := Split(out[j])
		return strings.ToUpper(ni) < strings.ToUpper(nj)
	})
	return out
}
