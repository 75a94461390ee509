//go:build !unix

package session

import (
	"os"
	"os/exec"
	"syscall"
)

const processGroups = false

func setProcessGroup(*exec.Cmd) {}

func signalProcess(p *os.Process, _ bool, sig syscall.Signal) error {
	return p.Signal(sig)
}
