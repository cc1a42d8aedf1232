package actor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/torcsys/torc-controller/pkg/collaborator/executor"
	"github.com/torcsys/torc-controller/pkg/collaborator/registry"
	"github.com/torcsys/torc-controller/pkg/collaborator/routing"
	"github.com/torcsys/torc-controller/pkg/types"
)

func newTestActor(t *testing.T) *Actor {
	t.Helper()
	a := New(Config{MyName: "controller-1", Clock: func() int64 { return 1000 }})
	a.Start()
	t.Cleanup(a.Stop)
	return a
}

func TestPingDoesNotBlock(t *testing.T) {
	a := newTestActor(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	a.Ping(ctx)
}

func TestStartTaskThenGetTaskState(t *testing.T) {
	a := newTestActor(t)
	ctx := context.Background()

	a.StartTask(ctx, types.Task{Name: "web-1", ID: "id-1"})

	require.Equal(t, types.TaskRequested, a.TaskState(ctx, "web-1"))
	require.Equal(t, types.TaskNotRunning, a.TaskState(ctx, "unknown"))
}

func TestStartTaskSetsController(t *testing.T) {
	a := newTestActor(t)
	ctx := context.Background()

	a.StartTask(ctx, types.Task{Name: "web-1"})

	task, ok := a.Task(ctx, "web-1")
	require.True(t, ok)
	require.Equal(t, "controller-1", task.Controller)
	require.EqualValues(t, 1000, task.LastUpdate)
}

func TestUpdateTaskStateToRunningRegistersTask(t *testing.T) {
	registered := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		registered = true
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg, err := registry.New(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)

	a := New(Config{MyName: "controller-1", Registry: reg, Clock: func() int64 { return 1000 }})
	a.Start()
	t.Cleanup(a.Stop)
	ctx := context.Background()

	a.StartTask(ctx, types.Task{Name: "web-1", IP: "10.0.0.5"})
	a.UpdateTaskState(ctx, "web-1", types.TaskRunning)

	require.True(t, registered)
	require.Equal(t, types.TaskRunning, a.TaskState(ctx, "web-1"))
}

func TestIsRestartableTaskRequiresOwnershipAndSystemServiceAndNotJob(t *testing.T) {
	a := newTestActor(t)
	ctx := context.Background()

	a.StartTask(ctx, types.Task{Name: "svc", IsSystemService: true, IsJob: false})
	require.True(t, a.IsRestartableTask(ctx, "svc"))

	a.StartTask(ctx, types.Task{Name: "batch-job", IsSystemService: true, IsJob: true})
	require.False(t, a.IsRestartableTask(ctx, "batch-job"))

	require.False(t, a.IsRestartableTask(ctx, "missing"))
}

func TestGetNodeNeverAbortsOnUnknownNode(t *testing.T) {
	a := newTestActor(t)
	ctx := context.Background()

	node, ok := a.Node(ctx, "ghost")
	require.False(t, ok)
	require.Equal(t, types.Node{}, node)
}

func TestUpdateNodeActivatesNode(t *testing.T) {
	a := newTestActor(t)
	ctx := context.Background()

	a.AddNode(ctx, types.Node{Name: "node-1"})
	require.False(t, a.IsNodeActive(ctx, "node-1"))

	a.UpdateNode(ctx, "node-1", "slave", "", "")

	require.True(t, a.IsNodeActive(ctx, "node-1"))
	node, ok := a.Node(ctx, "node-1")
	require.True(t, ok)
	require.Equal(t, "slave", node.NodeType)
}

func TestRemoveTaskByName(t *testing.T) {
	a := newTestActor(t)
	ctx := context.Background()

	a.StartTask(ctx, types.Task{Name: "web-1"})
	a.RemoveTaskByName(ctx, "web-1")

	_, ok := a.Task(ctx, "web-1")
	require.False(t, ok)
}

func TestAnnounceHeartbeatTouchesLastUpdateOnly(t *testing.T) {
	a := New(Config{MyName: "controller-2", Clock: func() int64 { return 2000 }})
	a.Start()
	t.Cleanup(a.Stop)
	ctx := context.Background()

	a.send(ctx, message{kind: kindStartTask, task: types.Task{Name: "web-1", ID: "abc", State: types.TaskRunning, LastUpdate: 1000}})

	a.Announce(ctx, types.Task{Name: "web-1", ID: "abc", State: types.TaskRunning})

	task, ok := a.Task(ctx, "web-1")
	require.True(t, ok)
	require.Equal(t, types.TaskRunning, task.State)
	require.EqualValues(t, 2000, task.LastUpdate)
}

func TestAnnounceNewReplicaInstallsRouteAndAddsTask(t *testing.T) {
	var gotOp string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOp = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	agent := routing.New("fboss", strings.TrimPrefix(srv.URL, "http://"))
	a := New(Config{MyName: "controller-2", Routing: agent, Clock: func() int64 { return 3000 }})
	a.Start()
	t.Cleanup(a.Stop)
	ctx := context.Background()

	a.AddNode(ctx, types.Node{Name: "node-1", ExternalIP: "10.0.0.9"})

	a.Announce(ctx, types.Task{Name: "web-1", ID: "new-id", NodeName: "node-1", IP: "10.0.0.20"})

	require.Equal(t, "/add_route", gotOp)
	task, ok := a.Task(ctx, "web-1")
	require.True(t, ok)
	require.Equal(t, "new-id", task.ID)
}

func TestKillTaskByNameSkippedWithoutExecutor(t *testing.T) {
	a := newTestActor(t)
	ctx := context.Background()
	a.StartTask(ctx, types.Task{Name: "web-1", IP: "10.0.0.5", ID: "id-1"})

	err := a.KillTaskByName(ctx, "web-1")
	require.NoError(t, err)
}

func TestKillTaskByNameCallsExecutor(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	a := New(Config{MyName: "controller-1", Executor: executor.New(), Clock: func() int64 { return 1000 }})
	a.Start()
	t.Cleanup(a.Stop)
	ctx := context.Background()

	addr := strings.TrimPrefix(srv.URL, "http://")
	a.StartTask(ctx, types.Task{Name: "web-1", IP: addr, ID: "id-1"})

	err := a.KillTaskByName(ctx, "web-1")
	require.NoError(t, err)
	require.Contains(t, gotQuery, "id=id-1")
}
