package config

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// homeOwner returns the uid and gid owning the home directory. ok is false
// when the process is not root, the owner is root itself, or the home
// directory cannot be inspected.
func homeOwner() (home string, uid, gid int, ok bool) {
	if os.Getuid() != 0 {
		return "", 0, 0, false
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", 0, 0, false
	}
	st, err := statOwner(home)
	if err != nil || st.Uid == 0 {
		return "", 0, 0, false
	}
	return home, int(st.Uid), int(st.Gid), true
}

func statOwner(path string) (*syscall.Stat_t, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, os.ErrInvalid
	}
	return st, nil
}

// FixOwnership hands path, and any directories between it and the home
// directory that root created, back to the home directory's owner. It is
// meant for containers where the editor runs as root inside a user's home:
// config files, logs and newly created documents would otherwise end up
// root-owned. Outside that situation it does nothing.
func FixOwnership(path string) {
	home, uid, gid, ok := homeOwner()
	if !ok {
		return
	}
	_ = os.Lchown(path, uid, gid)

	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		rel, err := filepath.Rel(home, dir)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return
		}
		st, err := statOwner(dir)
		if err != nil || int(st.Uid) == uid {
			return
		}
		_ = os.Lchown(dir, uid, gid)
	}
}
