// Package session opens SSM sessions into ECS containers: local port
// forwards and interactive shells.
//
// Port forwarding starts one aws CLI child per port mapping and keeps them
// until the operator interrupts; every child is terminated and reaped before
// PortForward returns, whichever way it returns.
//
// Exec attaches a single child to the terminal and ignores interrupts while
// it runs. The session has to be closed from inside the shell (CTRL-D or
// exit); killing the child would leave the remote session open.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tasnim.dev/opfyx/internal/aws/ecs"
)

// ContainerResolver finds the container a session attaches to.
type ContainerResolver interface {
	ResolveContainer(ctx context.Context, cluster, task string, filter ecs.ContainerFilter) (*ecs.ECSContainer, error)
}

type Orchestrator struct {
	Resolver ContainerResolver
	Launcher Launcher
	// Interrupts delivers operator interrupts, usually from signal.Notify.
	Interrupts <-chan os.Signal
	Out        io.Writer
	Log        zerolog.Logger
}

type PortForwardRequest struct {
	Cluster string
	Task    string
	Ports   []PortMapping
}

type ExecRequest struct {
	Cluster   string
	Task      string
	Container string
}

// PortForward forwards every mapping to the first running container of the
// task until an interrupt arrives or ctx is done.
func (o *Orchestrator) PortForward(ctx context.Context, req PortForwardRequest) (err error) {
	if len(req.Ports) == 0 {
		return fmt.Errorf("%w: no port specified", ErrInvalidArgument)
	}
	params := make([]string, len(req.Ports))
	for i, pm := range req.Ports {
		if params[i], err = pm.Parameters(); err != nil {
			return err
		}
	}

	filter := ecs.FirstRunning()
	o.Log.Debug().Str("task", req.Task).Stringer("container", filter).Msg("resolving container")
	container, err := o.Resolver.ResolveContainer(ctx, req.Cluster, req.Task, filter)
	if err != nil {
		return err
	}
	target := Target(req.Cluster, req.Task, container.RuntimeID)
	fmt.Fprintf(o.Out, "Forwarding to %s\n", target)

	tunnels := newChildren(o.Log)
	defer func() {
		err = errors.Join(err, tunnels.shutdown())
	}()

	for i, pm := range req.Ports {
		proc, err := o.Launcher.Start(ctx, Spec{
			Target:     target,
			Document:   PortForwardDocument,
			Parameters: params[i],
		})
		if err != nil {
			return fmt.Errorf("%w: port %s: %w", ErrSpawnFailed, pm, err)
		}
		tunnels.add(pm.String(), proc)
		o.Log.Info().Str("target", target).Str("port", pm.String()).Msg("tunnel started")
	}

	select {
	case sig := <-o.Interrupts:
		o.Log.Debug().Str("signal", fmt.Sprint(sig)).Msg("interrupt received")
	case <-ctx.Done():
	}
	fmt.Fprintln(o.Out, "Shutting down")
	return nil
}

// Exec opens an interactive shell in the named container and returns once
// the shell exits. Interrupts only print a reminder.
func (o *Orchestrator) Exec(ctx context.Context, req ExecRequest) error {
	if req.Container == "" {
		return fmt.Errorf("%w: no container specified", ErrInvalidArgument)
	}
	filter := ecs.Named(req.Container)
	o.Log.Debug().Str("task", req.Task).Stringer("container", filter).Msg("resolving container")
	container, err := o.Resolver.ResolveContainer(ctx, req.Cluster, req.Task, filter)
	if err != nil {
		return err
	}
	target := Target(req.Cluster, req.Task, container.RuntimeID)
	fmt.Fprintf(o.Out, "Exec target: %s\n", target)

	proc, err := o.Launcher.Start(ctx, Spec{Target: target, Interactive: true})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}

	type exit struct {
		code int
		err  error
	}
	exited := make(chan exit, 1)
	go func() {
		code, err := proc.Wait()
		exited <- exit{code: code, err: err}
	}()

	for {
		select {
		case e := <-exited:
			fmt.Fprintln(o.Out, "Session finished")
			if e.err != nil {
				return fmt.Errorf("%w: %w", ErrWaitFailed, e.err)
			}
			if e.code != 0 {
				o.Log.Debug().Int("exit_code", e.code).Msg("session exited with non-zero status")
			}
			return nil
		case <-o.Interrupts:
			fmt.Fprintln(o.Out, "\nExit session using CTRL-D")
		}
	}
}

// children owns the session processes of one command until each of them
// has been reaped.
type children struct {
	log      zerolog.Logger
	procs    []child
	waiters  errgroup.Group
	stopping atomic.Bool
}

type child struct {
	name string
	proc Process
}

func newChildren(log zerolog.Logger) *children {
	return &children{log: log}
}

func (c *children) add(name string, proc Process) {
	c.procs = append(c.procs, child{name: name, proc: proc})
	c.waiters.Go(func() error {
		code, err := proc.Wait()
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWaitFailed, name, err)
		}
		if !c.stopping.Load() {
			c.log.Warn().Str("port", name).Int("exit_code", code).Msg("tunnel exited")
		}
		return nil
	})
}

// shutdown terminates every child and blocks until all of them are reaped.
func (c *children) shutdown() error {
	c.stopping.Store(true)

	var errs []error
	for _, ch := range c.procs {
		if err := ch.proc.Terminate(); err != nil {
			errs = append(errs, fmt.Errorf("terminating %s: %w", ch.name, err))
		}
	}
	errs = append(errs, c.waiters.Wait())
	return errors.Join(errs...)
}
