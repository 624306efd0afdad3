//go:build !windows

package execshell

import "syscall"

func backgroundProcessAttributes() *syscall.SysProcAttr {
	return nil
}
