package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	awsecs "tasnim.dev/opfyx/internal/aws/ecs"
	awslogs "tasnim.dev/opfyx/internal/aws/logs"
	"tasnim.dev/opfyx/internal/paginate"
	"tasnim.dev/opfyx/internal/render"
	"tasnim.dev/opfyx/internal/session"
)

const defaultLogLimit = 100

func newTaskCmd(a *app) *cobra.Command {
	var cluster string

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Inspect tasks and open sessions into their containers",
	}
	cmd.PersistentFlags().StringVar(&cluster, "cluster", "", "cluster name or ARN")
	_ = cmd.MarkPersistentFlagRequired("cluster")

	cmd.AddCommand(
		newTaskListCmd(a, &cluster),
		newTaskGetCmd(a, &cluster),
		newPortForwardCmd(a, &cluster),
		newExecCmd(a, &cluster),
		newLogsCmd(a, &cluster),
	)
	return cmd
}

func newTaskListCmd(a *app, cluster *string) *cobra.Command {
	var opts awsecs.TaskListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks of a cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.connect(ctx)
			if err != nil {
				return err
			}

			p := a.printer()
			tbl := render.NewTable(render.TaskHeaders...)
			for t, err := range paginate.Items(svc.ECS.Tasks(ctx, *cluster, opts)) {
				if err != nil {
					return err
				}
				tbl.Append(p.TaskRow(t)...)
			}
			return p.Table(tbl)
		},
	}
	cmd.Flags().StringVar(&opts.ServiceName, "service", "", "only tasks of this service")
	cmd.Flags().StringVar(&opts.DesiredStatus, "desired-status", "", "RUNNING, PENDING or STOPPED")
	return cmd
}

func newTaskGetCmd(a *app, cluster *string) *cobra.Command {
	var task string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show details of a task",
	}
	cmd.PersistentFlags().StringVar(&task, "task", "", "task id or ARN")
	_ = cmd.MarkPersistentFlagRequired("task")

	cmd.AddCommand(&cobra.Command{
		Use:   "containers",
		Short: "List the containers of a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.connect(ctx)
			if err != nil {
				return err
			}
			snap, err := svc.ECS.DescribeTask(ctx, *cluster, task)
			if err != nil {
				return err
			}

			p := a.printer()
			if err := p.TaskDetail(snap); err != nil {
				return err
			}
			tbl := render.NewTable(render.ContainerHeaders...)
			for _, c := range snap.Containers {
				tbl.Append(p.ContainerRow(c)...)
			}
			return p.Table(tbl)
		},
	})
	return cmd
}

func newPortForwardCmd(a *app, cluster *string) *cobra.Command {
	var (
		task  string
		ports []string
	)

	cmd := &cobra.Command{
		Use:     "port-forward",
		Short:   "Forward local ports to the first running container of a task",
		Example: "  opfyx task port-forward --cluster prod --task abc123 --port 8080:80 --port 5432:5432",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mappings, err := session.ParsePortMappings(ports)
			if err != nil {
				return err
			}
			if len(mappings) == 0 {
				return fmt.Errorf("%w: no port specified", session.ErrInvalidArgument)
			}

			ctx := cmd.Context()
			svc, err := a.connect(ctx)
			if err != nil {
				return err
			}
			interrupts, stop := a.notify()
			defer stop()

			o := &session.Orchestrator{
				Resolver:   svc.ECS,
				Launcher:   a.launcher(),
				Interrupts: interrupts,
				Out:        a.out,
				Log:        a.log,
			}
			return o.PortForward(ctx, session.PortForwardRequest{
				Cluster: *cluster,
				Task:    task,
				Ports:   mappings,
			})
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "task id or ARN")
	cmd.Flags().StringArrayVar(&ports, "port", nil, "LOCAL:REMOTE port mapping, repeatable")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func newExecCmd(a *app, cluster *string) *cobra.Command {
	var task, container string

	cmd := &cobra.Command{
		Use:   "exec",
		Short: "Open an interactive shell in a container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.connect(ctx)
			if err != nil {
				return err
			}
			interrupts, stop := a.notify()
			defer stop()

			o := &session.Orchestrator{
				Resolver:   svc.ECS,
				Launcher:   a.launcher(),
				Interrupts: interrupts,
				Out:        a.out,
				Log:        a.log,
			}
			return o.Exec(ctx, session.ExecRequest{
				Cluster:   *cluster,
				Task:      task,
				Container: container,
			})
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "task id or ARN")
	cmd.Flags().StringVar(&container, "container", "", "container name")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}

func newLogsCmd(a *app, cluster *string) *cobra.Command {
	var (
		task, container string
		limit           int
		fromHead        bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the CloudWatch logs of a container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 || limit > awslogs.MaxLimit {
				return fmt.Errorf("%w: --limit must be between 1 and %d", session.ErrInvalidArgument, awslogs.MaxLimit)
			}

			ctx := cmd.Context()
			svc, err := a.connect(ctx)
			if err != nil {
				return err
			}
			snap, err := svc.ECS.DescribeTask(ctx, *cluster, task)
			if err != nil {
				return err
			}
			target, err := svc.ECS.LogTarget(ctx, snap, container)
			if err != nil {
				return err
			}
			a.log.Debug().Str("group", target.Group).Str("stream", target.Stream).Msg("reading logs")

			p := a.printer()
			q := awslogs.StreamQuery{Group: target.Group, Stream: target.Stream, Limit: limit, FromHead: fromHead}
			if !fromHead {
				// The newest events come back in a single page.
				for page, err := range svc.Logs.Events(ctx, q) {
					if err != nil {
						return err
					}
					return p.LogEvents(page)
				}
				return nil
			}

			printed := 0
			for page, err := range svc.Logs.Events(ctx, q) {
				if err != nil {
					return err
				}
				page = page[:min(len(page), limit-printed)]
				if err := p.LogEvents(page); err != nil {
					return err
				}
				if printed += len(page); printed >= limit {
					break
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "task id or ARN")
	cmd.Flags().StringVar(&container, "container", "", "container name")
	cmd.Flags().IntVar(&limit, "limit", defaultLogLimit, "maximum number of events to print")
	cmd.Flags().BoolVar(&fromHead, "from-head", false, "print the oldest events instead of the newest")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}
