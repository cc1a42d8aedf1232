// Package log wraps zerolog with the component-logger convention used
// across this repository: every actor, loop, and collaborator client gets
// its own child logger via WithComponent so log lines can be filtered by
// subsystem without adding a field at every call site.
package log
