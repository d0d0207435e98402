package config

import (
	"bufio"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SSHHost is one Host block from ~/.ssh/config.
type SSHHost struct {
	Patterns     []string // Host patterns; * and ? glob, a leading ! negates
	HostName     string   // %h is replaced by the name being resolved
	Port         string
	User         string
	IdentityFile string // ~ expanded
}

// Matches reports whether name selects this block: at least one positive
// pattern matches and no negated pattern does.
func (h SSHHost) Matches(name string) bool {
	matched := false
	for _, p := range h.Patterns {
		neg := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(p, "!")
		ok, err := path.Match(strings.ToLower(p), strings.ToLower(name))
		if err != nil || !ok {
			continue
		}
		if neg {
			return false
		}
		matched = true
	}
	return matched
}

// Endpoint is a fully resolved SSH destination.
type Endpoint struct {
	Host         string
	Port         string
	User         string
	IdentityFile string
}

// Resolve fills in a remote target. Values given on the target win. The
// host blocks are then consulted in file order, the first value found for
// each field being used as ssh(1) does. The [ssh] section, $USER and port 22
// fill whatever is still missing.
func (c *Config) Resolve(hosts []SSHHost, host, port, user string) Endpoint {
	ep := Endpoint{Port: port, User: user}
	var hostName string
	for _, h := range hosts {
		if !h.Matches(host) {
			continue
		}
		hostName = firstNonEmpty(hostName, h.HostName)
		ep.Port = firstNonEmpty(ep.Port, h.Port)
		ep.User = firstNonEmpty(ep.User, h.User)
		ep.IdentityFile = firstNonEmpty(ep.IdentityFile, h.IdentityFile)
	}
	ep.Host = host
	if hostName != "" {
		ep.Host = strings.ReplaceAll(hostName, "%h", host)
	}

	ep.User = firstNonEmpty(ep.User, c.SSH.User, os.Getenv("USER"))
	ep.Port = firstNonEmpty(ep.Port, "22")
	if ep.IdentityFile == "" && c.SSH.IdentityFile != "" {
		home, _ := os.UserHomeDir()
		ep.IdentityFile = expandTilde(c.SSH.IdentityFile, home)
	}
	return ep
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// sshConfigPath returns the default SSH config file path.
func sshConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ssh", "config")
}

// LoadSSHConfig reads ~/.ssh/config. A missing or unreadable file yields no
// host blocks.
func LoadSSHConfig() []SSHHost {
	return LoadSSHConfigFrom(sshConfigPath())
}

// LoadSSHConfigFrom reads and parses an SSH config file at the given path.
func LoadSSHConfigFrom(path string) []SSHHost {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	return ParseSSHConfig(f)
}

// ParseSSHConfig parses SSH config content. Only Host blocks and the
// HostName, Port, User and IdentityFile keywords are kept; Match blocks are
// skipped entirely. Within a block the first value of a keyword wins.
func ParseSSHConfig(r io.Reader) []SSHHost {
	var hosts []SSHHost
	var current *SSHHost
	inMatch := false

	home, _ := os.UserHomeDir()
	flush := func() {
		if current != nil {
			hosts = append(hosts, *current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value := splitSSHConfigLine(line)
		if key == "" {
			continue
		}

		switch strings.ToLower(key) {
		case "host":
			flush()
			inMatch = false
			current = &SSHHost{Patterns: strings.Fields(value)}
			continue
		case "match":
			flush()
			inMatch = true
			continue
		}
		if current == nil || inMatch {
			continue
		}
		value = unquote(value)
		switch strings.ToLower(key) {
		case "hostname":
			current.HostName = firstNonEmpty(current.HostName, value)
		case "port":
			current.Port = firstNonEmpty(current.Port, value)
		case "user":
			current.User = firstNonEmpty(current.User, value)
		case "identityfile":
			current.IdentityFile = firstNonEmpty(current.IdentityFile, expandTilde(value, home))
		}
	}
	flush()
	return hosts
}

// splitSSHConfigLine splits "Key value", "Key=value" or "Key = value".
func splitSSHConfigLine(line string) (string, string) {
	i := strings.IndexAny(line, " \t=")
	if i < 0 {
		return line, ""
	}
	key := line[:i]
	rest := strings.TrimLeft(line[i:], " \t")
	rest = strings.TrimPrefix(rest, "=")
	return key, strings.TrimSpace(rest)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	if path == "~" {
		return home
	}
	return path
}
