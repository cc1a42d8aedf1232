/*
Package types defines Task and Node, the two record kinds the state actor
owns.

A Task is a container instance: placement selectors, resource requests,
lifecycle state, and the runtime fields an executor fills in once it has
placed the container. A Node is a physical host: its data-plane IP, the
external IP used for route installation, its IPMI management IP, and a
liveness timestamp.

Neither type carries behavior. All mutation goes through pkg/tasktable and
pkg/nodetable; this package exists so that those two packages, pkg/actor,
the collaborator clients, and the reconciliation loops can all speak the
same vocabulary without import cycles.
*/
package types
