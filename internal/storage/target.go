package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// Target is a parsed command-line document location. Host is empty for
// local files.
type Target struct {
	User string
	Host string
	Port string
	Path string
}

// Remote reports whether the target lives on another host.
func (t Target) Remote() bool { return t.Host != "" }

func (t Target) String() string {
	if !t.Remote() {
		return t.Path
	}
	host := t.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if t.User != "" {
		host = t.User + "@" + host
	}
	if t.Port != "" {
		path := t.Path
		if !strings.HasPrefix(path, "/") {
			path = "/~/" + path
		}
		return "ssh://" + host + ":" + t.Port + path
	}
	return host + ":" + t.Path
}

// ParseTarget accepts a local path, scp-style "[user@]host:path" or
// "ssh://[user@]host[:port]/path". As with scp, a colon only marks a remote
// target when no slash precedes it. The empty string is a new, unnamed
// local document.
func ParseTarget(arg string) (Target, error) {
	if arg == "" {
		return Target{}, nil
	}
	if strings.HasPrefix(arg, "ssh://") {
		return parseURL(arg)
	}
	host, path, ok := splitRemote(arg)
	if !ok {
		return Target{Path: arg}, nil
	}
	t := Target{Host: host, Path: path}
	if at := strings.LastIndex(host, "@"); at >= 0 {
		t.User, t.Host = host[:at], host[at+1:]
	}
	t.Host = strings.TrimSuffix(strings.TrimPrefix(t.Host, "["), "]")
	return t, t.validate(arg)
}

func splitRemote(arg string) (host, path string, ok bool) {
	start := 0
	if at := strings.IndexByte(arg, '@'); at >= 0 {
		start = at + 1
	}
	var sep int
	if strings.HasPrefix(arg[start:], "[") {
		end := strings.Index(arg[start:], "]:")
		if end < 0 {
			return "", "", false
		}
		sep = start + end + 1
	} else {
		i := strings.IndexByte(arg[start:], ':')
		if i < 0 {
			return "", "", false
		}
		sep = start + i
	}
	if sep == 0 || strings.ContainsRune(arg[:sep], '/') {
		return "", "", false
	}
	return arg[:sep], arg[sep+1:], true
}

func parseURL(arg string) (Target, error) {
	u, err := url.Parse(arg)
	if err != nil {
		return Target{}, fmt.Errorf("parse target: %w", err)
	}
	t := Target{
		Host: u.Hostname(),
		Port: u.Port(),
		Path: u.Path,
	}
	if u.User != nil {
		t.User = u.User.Username()
	}
	// ssh://host/~/notes.txt is relative to the login directory.
	if rest, ok := strings.CutPrefix(t.Path, "/~/"); ok {
		t.Path = rest
	}
	return t, t.validate(arg)
}

func (t Target) validate(arg string) error {
	if t.Host == "" {
		return fmt.Errorf("missing host in %q", arg)
	}
	if t.Path == "" || t.Path == "/" {
		return fmt.Errorf("missing remote path in %q", arg)
	}
	return nil
}
