//go:build unix

package session

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

const processGroups = true

func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// signalProcess signals p, or the process group p leads when group is set.
// A process or group that no longer exists reports os.ErrProcessDone.
func signalProcess(p *os.Process, group bool, sig syscall.Signal) error {
	if !group {
		return p.Signal(sig)
	}
	if err := syscall.Kill(-p.Pid, sig); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
	return nil
}
