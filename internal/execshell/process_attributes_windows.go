//go:build windows

package execshell

import "syscall"

func backgroundProcessAttributes() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{HideWindow: true}
}
