package ecs

type ECSCluster struct {
	ARN            string
	Name           string
	Status         string
	RunningTasks   int
	ActiveServices int
}

type ECSTask struct {
	TaskID           string
	ARN              string
	Group            string
	AvailabilityZone string
	CPU              string
	Memory           string
	LastStatus       string
	TaskDef          string
}

// ECSContainer is one container of a task. A nil ExitCode means the
// container has not exited.
type ECSContainer struct {
	Name       string
	RuntimeID  string
	Image      string
	LastStatus string
	ExitCode   *int
}

// Running reports whether the container has not reported an exit code.
func (c ECSContainer) Running() bool {
	return c.ExitCode == nil
}

// ECSTaskSnapshot is a task and its containers as returned by a single
// DescribeTasks call.
type ECSTaskSnapshot struct {
	ECSTask
	TaskDefARN string
	Containers []ECSContainer
}

// TaskListOptions narrows a task listing. Empty fields are not sent.
type TaskListOptions struct {
	ServiceName   string
	DesiredStatus string
}

// LogTarget locates the CloudWatch log stream of one container.
type LogTarget struct {
	Group  string
	Stream string
}
