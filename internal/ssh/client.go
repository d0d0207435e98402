package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"strings"
	"time"

	"github.com/bramvdbogaerde/go-scp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultPerm is the mode given to files created on the remote side.
const DefaultPerm = "0644"

// Client wraps an SSH connection used to read and write single files.
type Client struct {
	client  *ssh.Client
	address string
	user    string
}

// New dials host:port and completes the handshake. The connection has a ten
// second dial timeout.
func New(host, port, username string, authMethods []ssh.AuthMethod, hkCallback ssh.HostKeyCallback) (*Client, error) {
	cfg := &ssh.ClientConfig{
		User:            username,
		Auth:            authMethods,
		HostKeyCallback: hkCallback,
		Timeout:         10 * time.Second,
	}
	address := net.JoinHostPort(host, port)
	client, err := ssh.Dial("tcp", address, cfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return &Client{
		client:  client,
		address: address,
		user:    username,
	}, nil
}

// Address returns host:port of the remote end.
func (c *Client) Address() string { return c.address }

// User returns the login name.
func (c *Client) User() string { return c.user }

// PasswordAuth authenticates with a fixed password.
func PasswordAuth(password string) ssh.AuthMethod {
	return ssh.Password(password)
}

// PubKeyAuth loads an unencrypted private key from keyPath.
func PubKeyAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", keyPath, err)
	}
	return ssh.PublicKeys(signer), nil
}

// AgentAuth connects to the agent at SSH_AUTH_SOCK. The returned close
// function releases the agent connection once the handshake is done.
func AgentAuth() (ssh.AuthMethod, func() error, error) {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil, nil, errors.New("SSH_AUTH_SOCK not set")
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil, nil, fmt.Errorf("dial agent: %w", err)
	}
	return ssh.PublicKeysCallback(agent.NewClient(conn).Signers), conn.Close, nil
}

// HostKeyCallback verifies hosts against a known_hosts file, or accepts any
// key when insecure is set.
func HostKeyCallback(knownHostsPath string, insecure bool) (ssh.HostKeyCallback, error) {
	if insecure {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("known hosts %s: %w", knownHostsPath, err)
	}
	return cb, nil
}

// Close ends the connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// Exists reports whether path names an existing file on the remote side.
func (c *Client) Exists(path string) (ok bool, retErr error) {
	session, err := c.client.NewSession()
	if err != nil {
		return false, err
	}
	defer func() {
		if cErr := session.Close(); cErr != nil && !errors.Is(cErr, io.EOF) {
			retErr = errors.Join(retErr, fmt.Errorf("close session: %w", cErr))
		}
	}()

	err = session.Run("test -e " + shellQuote(path))
	var exitErr *ssh.ExitError
	switch {
	case err == nil:
		return true, nil
	case errors.As(err, &exitErr) && exitErr.ExitStatus() == 1:
		return false, nil
	default:
		return false, err
	}
}

// ReadFile downloads the remote file at path. A file that does not exist
// yields an error wrapping fs.ErrNotExist.
func (c *Client) ReadFile(ctx context.Context, path string) ([]byte, error) {
	ok, err := c.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, fs.ErrNotExist)
	}

	scpClient, err := scp.NewClientBySSH(c.client)
	if err != nil {
		return nil, err
	}
	defer scpClient.Close()

	var buf bytes.Buffer
	if err := scpClient.CopyFromRemotePassThru(ctx, &buf, path, nil); err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// WriteFile uploads data to path with mode perm ("0644" when empty) and
// returns the number of bytes sent.
func (c *Client) WriteFile(ctx context.Context, path string, data []byte, perm string) (int, error) {
	if perm == "" {
		perm = DefaultPerm
	}
	scpClient, err := scp.NewClientBySSH(c.client)
	if err != nil {
		return 0, err
	}
	defer scpClient.Close()

	if err := scpClient.CopyFile(ctx, bytes.NewReader(data), path, perm); err != nil {
		return 0, fmt.Errorf("upload %s: %w", path, err)
	}
	return len(data), nil
}

// shellQuote makes s safe to pass as one word to the remote shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
