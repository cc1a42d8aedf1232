// Package nodetable holds the in-memory node table. Like pkg/tasktable,
// it does no locking of its own; pkg/actor's serving loop is the only
// caller and guarantees single-threaded access.
package nodetable

import "github.com/torcsys/torc-controller/pkg/types"

// Table is the node table. The zero value is not usable; use New.
type Table struct {
	nodes []types.Node
	index map[string]int
}

// New returns an empty node table.
func New() *Table {
	return &Table{
		index: make(map[string]int),
	}
}

// Add inserts a new node, or replaces it in place if the name is already
// present.
func (t *Table) Add(node types.Node) {
	if i, ok := t.index[node.Name]; ok {
		t.nodes[i] = node
		return
	}
	t.index[node.Name] = len(t.nodes)
	t.nodes = append(t.nodes, node)
}

// Get returns the node with the given name. ok is false when no such node
// exists. Unlike a lookup that panics or aborts on a missing key, this
// always returns a usable zero value so callers can handle an unknown
// node the same way they handle any other not-found case.
func (t *Table) Get(name string) (types.Node, bool) {
	i, ok := t.index[name]
	if !ok {
		return types.Node{}, false
	}
	return t.nodes[i], true
}

// IsActive reports whether the named node exists and is marked active.
func (t *Table) IsActive(name string) bool {
	node, ok := t.Get(name)
	return ok && node.Active
}

// Update overwrites a node's record in place, preserving Active unless the
// caller's record also changes it, and bumps LastSeen to now.
func (t *Table) Update(node types.Node, now int64) {
	node.LastSeen = now
	t.Add(node)
}

// SetInactive marks a node inactive, if it exists.
func (t *Table) SetInactive(name string) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.nodes[i].Active = false
	return true
}

// Touch bumps a node's LastSeen timestamp and marks it active. It reports
// false if the node does not exist.
func (t *Table) Touch(name string, now int64) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.nodes[i].LastSeen = now
	t.nodes[i].Active = true
	return true
}

// All returns a copy of every node in insertion order.
func (t *Table) All() []types.Node {
	out := make([]types.Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}
