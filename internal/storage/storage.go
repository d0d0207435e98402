// Package storage moves document text between the editor and where it
// lives: the local filesystem or a remote host reached over SSH.
package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
)

// Storage loads and saves whole documents.
type Storage interface {
	// Load returns the raw text at path. A missing file yields an error
	// wrapping fs.ErrNotExist.
	Load(ctx context.Context, path string) (string, error)
	// Save replaces the file at path with text and returns the bytes written.
	Save(ctx context.Context, path, text string) (int, error)
	// Describe names path for the status bar.
	Describe(path string) string
}

// IsNotExist reports whether err means the document does not exist yet.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Local is the filesystem backend.
type Local struct {
	// AfterCreate, when set, runs on files that Save had to create.
	AfterCreate func(path string)
}

func (Local) Load(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Save keeps the mode of an existing file; new files get 0644.
func (l Local) Save(_ context.Context, path, text string) (int, error) {
	perm := os.FileMode(0644)
	created := false
	info, err := os.Stat(path)
	switch {
	case err == nil:
		perm = info.Mode().Perm()
	case errors.Is(err, fs.ErrNotExist):
		created = true
	default:
		return 0, err
	}
	if err := os.WriteFile(path, []byte(text), perm); err != nil {
		return 0, err
	}
	if created && l.AfterCreate != nil {
		l.AfterCreate(path)
	}
	return len(text), nil
}

func (Local) Describe(path string) string { return path }

// FileClient is the remote file transport, satisfied by *ssh.Client.
type FileClient interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm string) (int, error)
}

// Remote stores documents on an SSH host.
type Remote struct {
	client FileClient
	label  string
	perm   string
}

// NewRemote returns a backend over client. label names the host
// ("user@host") in descriptions.
func NewRemote(client FileClient, label string) *Remote {
	return &Remote{client: client, label: label, perm: "0644"}
}

func (r *Remote) Load(ctx context.Context, path string) (string, error) {
	data, err := r.client.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *Remote) Save(ctx context.Context, path, text string) (int, error) {
	return r.client.WriteFile(ctx, path, []byte(text), r.perm)
}

func (r *Remote) Describe(path string) string {
	return r.label + ":" + path
}
