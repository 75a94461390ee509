package ecs

import (
	"context"
	"iter"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsecs "github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"

	"tasnim.dev/opfyx/internal/paginate"
	"tasnim.dev/opfyx/internal/utils"
)

type ECSAPI interface {
	ListClusters(ctx context.Context, params *awsecs.ListClustersInput, optFns ...func(*awsecs.Options)) (*awsecs.ListClustersOutput, error)
	DescribeClusters(ctx context.Context, params *awsecs.DescribeClustersInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeClustersOutput, error)
	ListTasks(ctx context.Context, params *awsecs.ListTasksInput, optFns ...func(*awsecs.Options)) (*awsecs.ListTasksOutput, error)
	DescribeTasks(ctx context.Context, params *awsecs.DescribeTasksInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeTasksOutput, error)
	DescribeTaskDefinition(ctx context.Context, params *awsecs.DescribeTaskDefinitionInput, optFns ...func(*awsecs.Options)) (*awsecs.DescribeTaskDefinitionOutput, error)
}

// Client is safe for concurrent use; it holds no state besides the API.
type Client struct {
	api ECSAPI
}

func NewClient(api ECSAPI) *Client {
	return &Client{api: api}
}

// Clusters lists clusters page by page. Each page costs one ListClusters
// call and one DescribeClusters call over that page's ARNs only.
func (c *Client) Clusters(ctx context.Context) iter.Seq2[[]ECSCluster, error] {
	return paginate.Pages[struct{}, []ECSCluster](ctx, struct{}{}, paginate.FetcherFunc[struct{}, []ECSCluster](c.clusterPage))
}

func (c *Client) clusterPage(ctx context.Context, s struct{}, token string) ([]ECSCluster, struct{}, string, error) {
	listOut, err := c.api.ListClusters(ctx, &awsecs.ListClustersInput{
		NextToken: optional(token),
	})
	if err != nil {
		return nil, s, "", remoteErr("ListClusters", err)
	}
	next := aws.ToString(listOut.NextToken)
	if len(listOut.ClusterArns) == 0 {
		return nil, s, next, nil
	}

	descOut, err := c.api.DescribeClusters(ctx, &awsecs.DescribeClustersInput{
		Clusters: listOut.ClusterArns,
	})
	if err != nil {
		return nil, s, "", remoteErr("DescribeClusters", err)
	}

	clusters := make([]ECSCluster, 0, len(descOut.Clusters))
	for _, cl := range descOut.Clusters {
		clusters = append(clusters, ECSCluster{
			ARN:            aws.ToString(cl.ClusterArn),
			Name:           aws.ToString(cl.ClusterName),
			Status:         aws.ToString(cl.Status),
			RunningTasks:   int(cl.RunningTasksCount),
			ActiveServices: int(cl.ActiveServicesCount),
		})
	}
	return clusters, s, next, nil
}

type taskQuery struct {
	cluster string
	opts    TaskListOptions
}

// Tasks lists the tasks of a cluster page by page, describing each page
// as it arrives. The cluster is carried unchanged from page to page.
func (c *Client) Tasks(ctx context.Context, cluster string, opts TaskListOptions) iter.Seq2[[]ECSTask, error] {
	q := taskQuery{cluster: cluster, opts: opts}
	return paginate.Pages[taskQuery, []ECSTask](ctx, q, paginate.FetcherFunc[taskQuery, []ECSTask](c.taskPage))
}

func (c *Client) taskPage(ctx context.Context, q taskQuery, token string) ([]ECSTask, taskQuery, string, error) {
	in := &awsecs.ListTasksInput{
		Cluster:     aws.String(q.cluster),
		ServiceName: optional(q.opts.ServiceName),
		NextToken:   optional(token),
	}
	if q.opts.DesiredStatus != "" {
		in.DesiredStatus = ecstypes.DesiredStatus(q.opts.DesiredStatus)
	}

	listOut, err := c.api.ListTasks(ctx, in)
	if err != nil {
		return nil, q, "", remoteErr("ListTasks", err)
	}
	next := aws.ToString(listOut.NextToken)
	if len(listOut.TaskArns) == 0 {
		return nil, q, next, nil
	}

	descOut, err := c.api.DescribeTasks(ctx, &awsecs.DescribeTasksInput{
		Cluster: aws.String(q.cluster),
		Tasks:   listOut.TaskArns,
	})
	if err != nil {
		return nil, q, "", remoteErr("DescribeTasks", err)
	}

	tasks := make([]ECSTask, 0, len(descOut.Tasks))
	for _, t := range descOut.Tasks {
		tasks = append(tasks, toTask(t))
	}
	return tasks, q, next, nil
}

func toTask(t ecstypes.Task) ECSTask {
	taskARN := aws.ToString(t.TaskArn)
	return ECSTask{
		TaskID:           utils.ShortName(taskARN),
		ARN:              taskARN,
		Group:            aws.ToString(t.Group),
		AvailabilityZone: aws.ToString(t.AvailabilityZone),
		CPU:              aws.ToString(t.Cpu),
		Memory:           aws.ToString(t.Memory),
		LastStatus:       aws.ToString(t.LastStatus),
		TaskDef:          utils.ShortName(aws.ToString(t.TaskDefinitionArn)),
	}
}

func toContainers(containers []ecstypes.Container) []ECSContainer {
	out := make([]ECSContainer, len(containers))
	for i, c := range containers {
		var exitCode *int
		if c.ExitCode != nil {
			ec := int(*c.ExitCode)
			exitCode = &ec
		}
		out[i] = ECSContainer{
			Name:       aws.ToString(c.Name),
			RuntimeID:  aws.ToString(c.RuntimeId),
			Image:      aws.ToString(c.Image),
			LastStatus: aws.ToString(c.LastStatus),
			ExitCode:   exitCode,
		}
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
