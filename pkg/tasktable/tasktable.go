// Package tasktable holds the in-memory task table: the authoritative
// record of every task this controller knows about, keyed by name. The
// table itself does no locking of its own — pkg/actor is the only caller,
// and the actor's serving loop guarantees that table methods never run
// concurrently with one another.
package tasktable

import (
	"strings"

	"github.com/torcsys/torc-controller/pkg/types"
)

// Table is the task table. The zero value is not usable; use New.
type Table struct {
	tasks []types.Task
	index map[string]int
}

// New returns an empty task table.
func New() *Table {
	return &Table{
		index: make(map[string]int),
	}
}

// Add inserts a new task. If a task with the same name already exists it
// is replaced in place, preserving the original slice position so
// iteration order stays stable (spec invariant: insertion order).
func (t *Table) Add(task types.Task) {
	if i, ok := t.index[task.Name]; ok {
		t.tasks[i] = task
		return
	}
	t.index[task.Name] = len(t.tasks)
	t.tasks = append(t.tasks, task)
}

// Get returns the task with the given name. ok is false when no such task
// exists; callers must not treat a missing task as an error.
func (t *Table) Get(name string) (types.Task, bool) {
	i, ok := t.index[name]
	if !ok {
		return types.Task{}, false
	}
	return t.tasks[i], true
}

// Remove deletes the task with the given name, if present, preserving the
// insertion order of the tasks that remain.
func (t *Table) Remove(name string) {
	i, ok := t.index[name]
	if !ok {
		return
	}
	t.tasks = append(t.tasks[:i], t.tasks[i+1:]...)
	delete(t.index, name)
	for j := i; j < len(t.tasks); j++ {
		t.index[t.tasks[j].Name] = j
	}
}

// NameByIDPrefix returns the name of the first task whose ID has the given
// prefix. This performs a linear scan: task IDs are opaque and there are
// few enough tasks per controller that an index isn't worth the
// complexity, matching the original's short-id lookup.
func (t *Table) NameByIDPrefix(prefix string) (string, bool) {
	if prefix == "" {
		return "", false
	}
	for _, task := range t.tasks {
		if strings.HasPrefix(task.ID, prefix) {
			return task.Name, true
		}
	}
	return "", false
}

// HasID reports whether any task has the exact given ID. Unlike
// NameByIDPrefix, this never matches on a prefix: it is used for
// heartbeat detection, where a partial match would wrongly treat a new
// replica as a refresh of an existing one.
func (t *Table) HasID(id string) bool {
	if id == "" {
		return false
	}
	for _, task := range t.tasks {
		if task.ID == id {
			return true
		}
	}
	return false
}

// SetState updates a task's state and last_update timestamp, if the task
// exists. now is the caller-supplied Unix timestamp (the actor supplies
// the wall clock; tests supply a fixed value).
func (t *Table) SetState(name string, state types.TaskState, now int64) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.tasks[i].State = state
	t.tasks[i].LastUpdate = now
	return true
}

// SetNodeName updates the node a task is placed on.
func (t *Table) SetNodeName(name, nodeName string, now int64) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.tasks[i].NodeName = nodeName
	t.tasks[i].LastUpdate = now
	return true
}

// SetInfo overwrites the full task record, keeping the original slice
// position. The record is located by Name, so Name must be unchanged;
// every other field, ID included, is taken from task.
func (t *Table) SetInfo(task types.Task, now int64) bool {
	i, ok := t.index[task.Name]
	if !ok {
		return false
	}
	task.LastUpdate = now
	t.tasks[i] = task
	return true
}

// TouchLastUpdate bumps a task's last_update timestamp without otherwise
// changing it. This is what a peer announce heartbeat does.
func (t *Table) TouchLastUpdate(name string, now int64) bool {
	i, ok := t.index[name]
	if !ok {
		return false
	}
	t.tasks[i].LastUpdate = now
	return true
}

// All returns a copy of every task in insertion order.
func (t *Table) All() []types.Task {
	out := make([]types.Task, len(t.tasks))
	copy(out, t.tasks)
	return out
}

// WithState returns a copy of every task currently in the given state, in
// insertion order.
func (t *Table) WithState(state types.TaskState) []types.Task {
	var out []types.Task
	for _, task := range t.tasks {
		if task.State == state {
			out = append(out, task)
		}
	}
	return out
}

// Metered returns every task with IsMetered set, regardless of state.
func (t *Table) Metered() []types.Task {
	var out []types.Task
	for _, task := range t.tasks {
		if task.IsMetered {
			out = append(out, task)
		}
	}
	return out
}

// NonJobRunning returns every Running task that is not a one-shot job.
func (t *Table) NonJobRunning() []types.Task {
	var out []types.Task
	for _, task := range t.tasks {
		if task.State == types.TaskRunning && !task.IsJob {
			out = append(out, task)
		}
	}
	return out
}

// OwnedBy returns every task whose controller field matches myName.
func (t *Table) OwnedBy(myName string) []types.Task {
	var out []types.Task
	for _, task := range t.tasks {
		if task.Controller == myName {
			out = append(out, task)
		}
	}
	return out
}
