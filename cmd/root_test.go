package cmd

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasnim.dev/opfyx/internal/aws/awserr"
	awsecs "tasnim.dev/opfyx/internal/aws/ecs"
	awslogs "tasnim.dev/opfyx/internal/aws/logs"
	"tasnim.dev/opfyx/internal/config"
	"tasnim.dev/opfyx/internal/session"
)

func pages[T any](ps ...[]T) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for _, p := range ps {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func failing[T any](err error) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		yield(nil, err)
	}
}

type fakeECS struct {
	clusters    iter.Seq2[[]awsecs.ECSCluster, error]
	tasks       iter.Seq2[[]awsecs.ECSTask, error]
	snapshot    *awsecs.ECSTaskSnapshot
	container   *awsecs.ECSContainer
	logTarget   *awsecs.LogTarget
	logErr      error
	err         error
	taskCluster string
	taskOpts    awsecs.TaskListOptions
	filters     []awsecs.ContainerFilter
}

func (f *fakeECS) Clusters(ctx context.Context) iter.Seq2[[]awsecs.ECSCluster, error] {
	return f.clusters
}

func (f *fakeECS) Tasks(ctx context.Context, cluster string, opts awsecs.TaskListOptions) iter.Seq2[[]awsecs.ECSTask, error] {
	f.taskCluster, f.taskOpts = cluster, opts
	return f.tasks
}

func (f *fakeECS) DescribeTask(ctx context.Context, cluster, task string) (*awsecs.ECSTaskSnapshot, error) {
	return f.snapshot, f.err
}

func (f *fakeECS) ResolveContainer(ctx context.Context, cluster, task string, filter awsecs.ContainerFilter) (*awsecs.ECSContainer, error) {
	f.filters = append(f.filters, filter)
	return f.container, f.err
}

func (f *fakeECS) LogTarget(ctx context.Context, snap *awsecs.ECSTaskSnapshot, container string) (*awsecs.LogTarget, error) {
	return f.logTarget, f.logErr
}

type fakeLogs struct {
	events iter.Seq2[[]awslogs.LogEvent, error]
	query  awslogs.StreamQuery
}

func (f *fakeLogs) Events(ctx context.Context, q awslogs.StreamQuery) iter.Seq2[[]awslogs.LogEvent, error] {
	f.query = q
	return f.events
}

type fakeProc struct {
	exit chan struct{}
	once sync.Once
}

func (p *fakeProc) Wait() (int, error) {
	<-p.exit
	return 0, nil
}

func (p *fakeProc) Terminate() error {
	p.once.Do(func() { close(p.exit) })
	return nil
}

type fakeLauncher struct {
	mu    sync.Mutex
	specs []session.Spec
	procs []*fakeProc
}

func (l *fakeLauncher) Start(ctx context.Context, spec session.Spec) (session.Process, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	p := &fakeProc{exit: make(chan struct{})}
	l.specs = append(l.specs, spec)
	l.procs = append(l.procs, p)
	return p, nil
}

type harness struct {
	app        *app
	ecs        *fakeECS
	logs       *fakeLogs
	launcher   *fakeLauncher
	interrupts chan os.Signal
	connects   int
	out        bytes.Buffer
	errOut     bytes.Buffer
}

func newHarness() *harness {
	h := &harness{
		ecs:        &fakeECS{},
		logs:       &fakeLogs{},
		launcher:   &fakeLauncher{},
		interrupts: make(chan os.Signal, 1),
	}
	h.app = &app{
		out:    &h.out,
		errOut: &h.errOut,
		cfg:    &config.Config{},
		connect: func(ctx context.Context) (*services, error) {
			h.connects++
			return &services{ECS: h.ecs, Logs: h.logs}, nil
		},
		launcher: func() session.Launcher { return h.launcher },
		notify: func() (<-chan os.Signal, func()) {
			return h.interrupts, func() {}
		},
	}
	return h
}

func (h *harness) run(args ...string) error {
	root := newRootCmd(h.app)
	root.SetArgs(args)
	return root.Execute()
}

func TestClusterList(t *testing.T) {
	h := newHarness()
	h.ecs.clusters = pages(
		[]awsecs.ECSCluster{{ARN: "arn:aws:ecs:us-east-1:1:cluster/prod", Name: "prod"}},
		[]awsecs.ECSCluster{},
		[]awsecs.ECSCluster{{ARN: "arn:aws:ecs:us-east-1:1:cluster/staging", Name: "staging"}},
	)

	require.NoError(t, h.run("cluster", "list"))

	out := h.out.String()
	assert.Contains(t, out, "Arn")
	assert.Contains(t, out, "cluster/prod")
	assert.Contains(t, out, "staging")
}

func TestClusterList_RemoteError(t *testing.T) {
	h := newHarness()
	boom := &awsecs.RemoteError{Op: "ListClusters", Err: errors.New("throttled")}
	h.ecs.clusters = failing[awsecs.ECSCluster](boom)

	err := h.run("cluster", "list")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, h.out.String(), "no partial table on failure")
}

func TestTaskList(t *testing.T) {
	h := newHarness()
	h.ecs.tasks = pages([]awsecs.ECSTask{{TaskID: "abc123", Group: "service:web", AvailabilityZone: "us-east-1a", CPU: "256", Memory: "512"}})

	require.NoError(t, h.run("task", "list", "--cluster", "prod", "--service", "web", "--desired-status", "STOPPED"))

	assert.Equal(t, "prod", h.ecs.taskCluster)
	assert.Equal(t, awsecs.TaskListOptions{ServiceName: "web", DesiredStatus: "STOPPED"}, h.ecs.taskOpts)
	out := h.out.String()
	for _, want := range []string{"Task Id", "Group", "AZ", "Cpu", "Memory", "abc123", "service:web", "us-east-1a"} {
		assert.Contains(t, out, want)
	}
}

func TestTaskList_LogsAPIErrorCode(t *testing.T) {
	h := newHarness()
	apiErr := &smithy.GenericAPIError{Code: "ClusterNotFoundException", Message: "Cluster not found."}
	h.ecs.tasks = failing[awsecs.ECSTask](awserr.Wrap("ListTasks", apiErr))

	err := h.run("task", "list", "--cluster", "nope", "--log-level", "debug")
	assert.ErrorIs(t, err, apiErr)

	logged := h.errOut.String()
	assert.Contains(t, logged, "aws api call failed")
	assert.Contains(t, logged, "ClusterNotFoundException")
	assert.Empty(t, h.out.String())
}

func TestTaskList_OtherErrorsLogNoCode(t *testing.T) {
	h := newHarness()
	h.ecs.tasks = failing[awsecs.ECSTask](context.DeadlineExceeded)

	err := h.run("task", "list", "--cluster", "prod", "--log-level", "debug")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotContains(t, h.errOut.String(), "aws api call failed")
}

func TestTaskList_RequiresCluster(t *testing.T) {
	h := newHarness()
	err := h.run("task", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster")
	assert.Zero(t, h.connects)
}

func TestTaskGetContainers(t *testing.T) {
	h := newHarness()
	code := 137
	h.ecs.snapshot = &awsecs.ECSTaskSnapshot{
		ECSTask: awsecs.ECSTask{TaskID: "abc123", LastStatus: "RUNNING", TaskDef: "web:3"},
		Containers: []awsecs.ECSContainer{
			{Name: "app", RuntimeID: "rt-1", Image: "nginx:1.27"},
			{Name: "init", RuntimeID: "rt-2", Image: "busybox", ExitCode: &code},
		},
	}

	require.NoError(t, h.run("task", "get", "--cluster", "prod", "--task", "abc123", "containers"))

	out := h.out.String()
	for _, want := range []string{"Task abc123", "web:3", "Exit Code", "app", "rt-1", "nginx:1.27", "137"} {
		assert.Contains(t, out, want)
	}
}

func TestTaskGetContainers_NotFound(t *testing.T) {
	h := newHarness()
	h.ecs.err = awsecs.ErrNotFound

	err := h.run("task", "get", "--cluster", "prod", "--task", "nope", "containers")
	assert.ErrorIs(t, err, awsecs.ErrNotFound)
}

func TestPortForward_InvalidPortBeforeLookup(t *testing.T) {
	h := newHarness()
	err := h.run("task", "port-forward", "--cluster", "prod", "--task", "abc", "--port", "8080")
	assert.ErrorIs(t, err, session.ErrInvalidArgument)
	assert.Zero(t, h.connects)
}

func TestPortForward_NoPort(t *testing.T) {
	h := newHarness()
	err := h.run("task", "port-forward", "--cluster", "prod", "--task", "abc")
	assert.ErrorIs(t, err, session.ErrInvalidArgument)
	assert.Zero(t, h.connects)
}

func TestPortForward_UntilInterrupt(t *testing.T) {
	h := newHarness()
	h.ecs.container = &awsecs.ECSContainer{Name: "app", RuntimeID: "rt-1"}

	done := make(chan error, 1)
	go func() {
		done <- h.run("task", "port-forward", "--cluster", "prod", "--task", "abc", "--port", "8080:80", "--port", "5432:5432")
	}()

	require.Eventually(t, func() bool {
		h.launcher.mu.Lock()
		defer h.launcher.mu.Unlock()
		return len(h.launcher.specs) == 2
	}, time.Second, 5*time.Millisecond)
	h.interrupts <- os.Interrupt

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("port-forward did not return after interrupt")
	}

	assert.Equal(t, "ecs:prod_abc_rt-1", h.launcher.specs[0].Target)
	assert.Equal(t, `{"portNumber":["5432"],"localPortNumber":["5432"]}`, h.launcher.specs[1].Parameters)
	assert.Contains(t, h.out.String(), "Forwarding to ecs:prod_abc_rt-1")
}

func TestExec_RequiresContainer(t *testing.T) {
	h := newHarness()
	err := h.run("task", "exec", "--cluster", "prod", "--task", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container")
	assert.Zero(t, h.connects)
}

func TestLogs_Tail(t *testing.T) {
	h := newHarness()
	h.ecs.snapshot = &awsecs.ECSTaskSnapshot{ECSTask: awsecs.ECSTask{TaskID: "abc"}}
	h.ecs.logTarget = &awsecs.LogTarget{Group: "/ecs/web", Stream: "web/app/abc"}
	h.logs.events = pages(
		[]awslogs.LogEvent{{Message: "one"}, {Message: "two"}},
		[]awslogs.LogEvent{{Message: "never printed"}},
	)

	require.NoError(t, h.run("task", "logs", "--cluster", "prod", "--task", "abc", "--container", "app", "--limit", "2"))

	assert.Equal(t, awslogs.StreamQuery{Group: "/ecs/web", Stream: "web/app/abc", Limit: 2}, h.logs.query)
	assert.Equal(t, "-  one\n-  two\n", h.out.String())
}

func TestLogs_FromHeadStopsAtLimit(t *testing.T) {
	h := newHarness()
	h.ecs.snapshot = &awsecs.ECSTaskSnapshot{ECSTask: awsecs.ECSTask{TaskID: "abc"}}
	h.ecs.logTarget = &awsecs.LogTarget{Group: "/ecs/web", Stream: "web/app/abc"}
	h.logs.events = pages(
		[]awslogs.LogEvent{{Message: "a"}, {Message: "b"}},
		[]awslogs.LogEvent{{Message: "c"}, {Message: "d"}},
	)

	require.NoError(t, h.run("task", "logs", "--cluster", "prod", "--task", "abc", "--container", "app", "--limit", "3", "--from-head"))

	assert.True(t, h.logs.query.FromHead)
	assert.Equal(t, "-  a\n-  b\n-  c\n", h.out.String())
}

func TestLogs_NoLogConfig(t *testing.T) {
	h := newHarness()
	h.ecs.snapshot = &awsecs.ECSTaskSnapshot{ECSTask: awsecs.ECSTask{TaskID: "abc"}}
	h.ecs.logErr = awsecs.ErrNoLogConfig

	err := h.run("task", "logs", "--cluster", "prod", "--task", "abc", "--container", "app")
	assert.ErrorIs(t, err, awsecs.ErrNoLogConfig)
	assert.Empty(t, h.out.String())
}

func TestLogs_InvalidLimit(t *testing.T) {
	for _, limit := range []string{"0", "-5", "10001", "3000000000"} {
		t.Run(limit, func(t *testing.T) {
			h := newHarness()
			err := h.run("task", "logs", "--cluster", "prod", "--task", "abc", "--container", "app", "--limit", limit)
			assert.ErrorIs(t, err, session.ErrInvalidArgument)
			assert.Zero(t, h.connects)
		})
	}
}
