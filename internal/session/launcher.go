package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"
)

const (
	defaultAWSCLI = "aws"
	pluginBinary  = "session-manager-plugin"

	// terminateGrace is how long a tunnel gets to close its remote session
	// after SIGTERM before it is killed.
	terminateGrace = 5 * time.Second
)

// Spec describes one `aws ssm start-session` child.
type Spec struct {
	Target string
	// Document and Parameters are empty for a plain interactive shell.
	Document   string
	Parameters string
	// Interactive attaches the child to the operator's terminal.
	Interactive bool
}

// Process is a running session child.
type Process interface {
	// Wait blocks until the child exits. A non-zero exit status is
	// reported through code; err is reserved for failures to wait at all.
	Wait() (code int, err error)
	// Terminate stops the child and anything it started. It is a no-op
	// once the child has exited.
	Terminate() error
}

type Launcher interface {
	Start(ctx context.Context, spec Spec) (Process, error)
}

// CLILauncher starts sessions through the aws CLI, which in turn runs the
// session-manager-plugin.
type CLILauncher struct {
	// AWSCLI is the aws executable; "aws" from PATH when empty.
	AWSCLI  string
	Profile string
	Region  string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	lookPath func(string) (string, error)
}

func (l *CLILauncher) Start(ctx context.Context, spec Spec) (Process, error) {
	lookPath := l.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath(pluginBinary); err != nil {
		return nil, fmt.Errorf("%s not found in PATH, install it: https://docs.aws.amazon.com/systems-manager/latest/userguide/session-manager-working-with-install-plugin.html", pluginBinary)
	}

	proc, err := startProcess(l.command(spec), !spec.Interactive)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

func (l *CLILauncher) command(spec Spec) *exec.Cmd {
	bin := l.AWSCLI
	if bin == "" {
		bin = defaultAWSCLI
	}

	cmd := exec.Command(bin, l.args(spec)...)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if !spec.Interactive {
		// Tunnels get their own process group so session-manager-plugin
		// is signalled together with the aws CLI.
		setProcessGroup(cmd)
	} else {
		cmd.Stdin = l.Stdin
		if cmd.Stdin == nil {
			cmd.Stdin = os.Stdin
		}
		if cmd.Stdout == nil {
			cmd.Stdout = os.Stdout
		}
		if cmd.Stderr == nil {
			cmd.Stderr = os.Stderr
		}
	}
	return cmd
}

func (l *CLILauncher) args(spec Spec) []string {
	args := []string{"ssm", "start-session", "--target", spec.Target}
	if spec.Document != "" {
		args = append(args, "--document-name", spec.Document)
	}
	if spec.Parameters != "" {
		args = append(args, "--parameters", spec.Parameters)
	}
	if l.Profile != "" {
		args = append(args, "--profile", l.Profile)
	}
	if l.Region != "" {
		args = append(args, "--region", l.Region)
	}
	return args
}

// cliProcess is a started aws CLI child. When group is set the child leads
// its own process group and signals go to the whole group.
type cliProcess struct {
	cmd    *exec.Cmd
	group  bool
	grace  time.Duration
	exited chan struct{}
}

func startProcess(cmd *exec.Cmd, group bool) (*cliProcess, error) {
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &cliProcess{
		cmd:    cmd,
		group:  group && processGroups,
		grace:  terminateGrace,
		exited: make(chan struct{}),
	}, nil
}

func (p *cliProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	close(p.exited)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// Terminate sends SIGTERM and kills the child if it, or any process left in
// its group, is still around after the grace period. Wait must be running
// concurrently for the exit to be observed.
func (p *cliProcess) Terminate() error {
	if err := p.signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return p.kill()
	}
	if p.awaitExit(p.grace) {
		return nil
	}
	return p.kill()
}

func (p *cliProcess) awaitExit(timeout time.Duration) bool {
	deadline := time.After(timeout)
	select {
	case <-p.exited:
	case <-deadline:
		return false
	}
	if !p.group {
		return true
	}

	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		if errors.Is(p.signal(0), os.ErrProcessDone) {
			return true
		}
		select {
		case <-tick.C:
		case <-deadline:
			return false
		}
	}
}

func (p *cliProcess) kill() error {
	err := p.signal(syscall.SIGKILL)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *cliProcess) signal(sig syscall.Signal) error {
	return signalProcess(p.cmd.Process, p.group, sig)
}
