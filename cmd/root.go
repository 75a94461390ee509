package cmd

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	awsclient "tasnim.dev/opfyx/internal/aws"
	"tasnim.dev/opfyx/internal/aws/awserr"
	awsecs "tasnim.dev/opfyx/internal/aws/ecs"
	awslogs "tasnim.dev/opfyx/internal/aws/logs"
	"tasnim.dev/opfyx/internal/config"
	"tasnim.dev/opfyx/internal/logging"
	"tasnim.dev/opfyx/internal/render"
	"tasnim.dev/opfyx/internal/session"
)

// ecsService is the part of the ECS client the commands use.
type ecsService interface {
	Clusters(ctx context.Context) iter.Seq2[[]awsecs.ECSCluster, error]
	Tasks(ctx context.Context, cluster string, opts awsecs.TaskListOptions) iter.Seq2[[]awsecs.ECSTask, error]
	DescribeTask(ctx context.Context, cluster, task string) (*awsecs.ECSTaskSnapshot, error)
	ResolveContainer(ctx context.Context, cluster, task string, filter awsecs.ContainerFilter) (*awsecs.ECSContainer, error)
	LogTarget(ctx context.Context, snap *awsecs.ECSTaskSnapshot, container string) (*awsecs.LogTarget, error)
}

type logService interface {
	Events(ctx context.Context, q awslogs.StreamQuery) iter.Seq2[[]awslogs.LogEvent, error]
}

type services struct {
	ECS  ecsService
	Logs logService
}

type globalOptions struct {
	region      string
	profile     string
	endpointURL string
	logLevel    string
}

// app carries what every subcommand needs once the root flags are parsed.
type app struct {
	opts   globalOptions
	cfg    *config.Config
	log    zerolog.Logger
	out    io.Writer
	errOut io.Writer

	connect  func(ctx context.Context) (*services, error)
	launcher func() session.Launcher
	notify   func() (<-chan os.Signal, func())
}

// NewRootCmd builds the opfyx command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{out: os.Stdout, errOut: os.Stderr})
}

func newRootCmd(a *app) *cobra.Command {
	if a.connect == nil {
		a.connect = a.connectAWS
	}
	if a.launcher == nil {
		a.launcher = a.cliLauncher
	}
	if a.notify == nil {
		a.notify = notifyInterrupts
	}

	cmd := &cobra.Command{
		Use:           "opfyx",
		Short:         "Inspect ECS tasks and open sessions into their containers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.opts.region, "region", "r", "", "AWS region to use")
	flags.StringVarP(&a.opts.profile, "profile", "p", "", "AWS profile to use")
	flags.StringVar(&a.opts.endpointURL, "endpoint-url", "", "override the AWS API endpoint")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(newClusterCmd(a))
	cmd.AddCommand(newTaskCmd(a))
	a.logAPIErrors(cmd)
	return cmd
}

// logAPIErrors wraps every RunE in the tree so that failed AWS calls log
// their error code.
func (a *app) logAPIErrors(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if code := awserr.Code(err); code != "" {
				a.log.Debug().Err(err).Str("code", code).Msg("aws api call failed")
			}
			return err
		}
	}
	for _, sub := range cmd.Commands() {
		a.logAPIErrors(sub)
	}
}

func (a *app) init() error {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.cfg = cfg
	}
	a.opts.profile, a.opts.region = a.cfg.Merge(a.opts.profile, a.opts.region)
	a.log = logging.New(a.errOut, a.cfg.Level(a.opts.logLevel))
	return nil
}

func (a *app) connectAWS(ctx context.Context) (*services, error) {
	client, err := awsclient.NewServiceClient(ctx, awsclient.Options{
		Profile:     a.opts.profile,
		Region:      a.opts.region,
		EndpointURL: a.opts.endpointURL,
	})
	if err != nil {
		return nil, err
	}

	if a.log.GetLevel() <= zerolog.DebugLevel {
		a.log.Debug().
			Str("account", awsclient.GetAccountID(ctx, client.Config, a.opts.endpointURL)).
			Str("region", client.Config.Region).
			Str("profile", a.opts.profile).
			Msg("aws config loaded")
	}
	return &services{ECS: client.ECS, Logs: client.Logs}, nil
}

func (a *app) cliLauncher() session.Launcher {
	return &session.CLILauncher{
		AWSCLI:  a.cfg.AWSCLI,
		Profile: a.opts.profile,
		Region:  a.opts.region,
		Stdout:  a.out,
		Stderr:  a.errOut,
	}
}

func (a *app) printer() *render.Printer {
	return render.NewPrinter(a.out, logging.IsTerminal(a.out))
}

func notifyInterrupts() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}
