package ecs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"tasnim.dev/opfyx/internal/utils"
)

// DescribeTask fetches a single task and its containers with one
// DescribeTasks call. task may be a task id or a full ARN.
func (c *Client) DescribeTask(ctx context.Context, cluster, task string) (*ECSTaskSnapshot, error) {
	descOut, err := c.api.DescribeTasks(ctx, &awsecs.DescribeTasksInput{
		Cluster: aws.String(cluster),
		Tasks:   []string{task},
	})
	if err != nil {
		return nil, remoteErr("DescribeTasks", err)
	}
	if len(descOut.Tasks) == 0 {
		if reason := failureReason(descOut.Failures); reason != "" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrNotFound, task, reason)
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, task)
	}

	t := descOut.Tasks[0]
	return &ECSTaskSnapshot{
		ECSTask:    toTask(t),
		TaskDefARN: aws.ToString(t.TaskDefinitionArn),
		Containers: toContainers(t.Containers),
	}, nil
}

func failureReason(failures []ecstypes.Failure) string {
	for _, f := range failures {
		if r := aws.ToString(f.Reason); r != "" {
			return r
		}
	}
	return ""
}

type containerMatch int

const (
	matchFirstRunning containerMatch = iota
	matchName
)

// ContainerFilter selects the container a session attaches to.
type ContainerFilter struct {
	match containerMatch
	name  string
}

// FirstRunning selects the first container that has not exited.
func FirstRunning() ContainerFilter {
	return ContainerFilter{match: matchFirstRunning}
}

// Named selects the container with exactly the given name. An empty name
// matches nothing.
func Named(name string) ContainerFilter {
	return ContainerFilter{match: matchName, name: name}
}

func (f ContainerFilter) String() string {
	if f.match == matchFirstRunning {
		return "first running"
	}
	return fmt.Sprintf("name=%q", f.name)
}

// Select returns the matching container in task order.
func (f ContainerFilter) Select(containers []ECSContainer) (*ECSContainer, error) {
	switch f.match {
	case matchFirstRunning:
		for i := range containers {
			if containers[i].Running() {
				return &containers[i], nil
			}
		}
		return nil, ErrNoRunningContainer
	default:
		if f.name != "" {
			for i := range containers {
				if containers[i].Name == f.name {
					return &containers[i], nil
				}
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrContainerNotFound, f.name)
	}
}

// ResolveContainer describes the task and picks a container with filter.
// The container must carry a runtime id, since sessions are addressed by it.
func (c *Client) ResolveContainer(ctx context.Context, cluster, task string, filter ContainerFilter) (*ECSContainer, error) {
	snap, err := c.DescribeTask(ctx, cluster, task)
	if err != nil {
		return nil, err
	}

	container, err := filter.Select(snap.Containers)
	if err != nil {
		return nil, err
	}
	if container.RuntimeID == "" {
		return nil, fmt.Errorf("%w: container %s", ErrMissingRuntimeID, container.Name)
	}
	return container, nil
}

// LogTarget finds the awslogs group and stream of a container from the
// task definition. The stream follows the awslogs naming scheme
// prefix/container/task-id, so a stream prefix is required.
func (c *Client) LogTarget(ctx context.Context, snap *ECSTaskSnapshot, container string) (*LogTarget, error) {
	tdOut, err := c.api.DescribeTaskDefinition(ctx, &awsecs.DescribeTaskDefinitionInput{
		TaskDefinition: aws.String(snap.TaskDefARN),
	})
	if err != nil {
		return nil, remoteErr("DescribeTaskDefinition", err)
	}
	if tdOut.TaskDefinition == nil {
		return nil, fmt.Errorf("%w: task definition %s", ErrNotFound, snap.TaskDefARN)
	}

	for _, cd := range tdOut.TaskDefinition.ContainerDefinitions {
		if aws.ToString(cd.Name) != container {
			continue
		}
		lc := cd.LogConfiguration
		if lc == nil || lc.LogDriver != ecstypes.LogDriverAwslogs {
			return nil, fmt.Errorf("%w: container %s", ErrNoLogConfig, container)
		}
		group := lc.Options["awslogs-group"]
		prefix := lc.Options["awslogs-stream-prefix"]
		if group == "" || prefix == "" {
			return nil, fmt.Errorf("%w: container %s has no group or stream prefix", ErrNoLogConfig, container)
		}
		return &LogTarget{
			Group:  group,
			Stream: prefix + "/" + container + "/" + utils.ShortName(snap.ARN),
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrContainerNotFound, container)
}
