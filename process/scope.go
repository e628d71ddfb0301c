package process

import (
	"strings"

	"github.com/iconoclast/childprocess/errors"
)

// StopScope selects which processes Stop signals.
type StopScope int

const (
	// ScopeProcess signals only the direct child.
	ScopeProcess StopScope = iota
	// ScopeGroup signals the child's whole process group (POSIX) or job
	// object (Windows). It needs SetLeader or SetDetach; without either the
	// child shares the parent's group and Stop falls back to ScopeProcess.
	ScopeGroup
	// ScopeTree signals every descendant found by walking the process table
	// before each escalation step, then the child.
	ScopeTree
)

var scopeNames = map[StopScope]string{
	ScopeProcess: "process",
	ScopeGroup:   "group",
	ScopeTree:    "tree",
}

// String implements fmt.Stringer.
func (s StopScope) String() string {
	if name, ok := scopeNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStopScope parses "process", "group" or "tree".
func ParseStopScope(s string) (StopScope, error) {
	for scope, name := range scopeNames {
		if strings.EqualFold(s, name) {
			return scope, nil
		}
	}
	return ScopeProcess, errors.InvalidInput("scope", "must be one of: process, group, tree")
}
