package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSSHHostMatches(t *testing.T) {
	tests := []struct {
		patterns []string
		name     string
		want     bool
	}{
		{[]string{"prod"}, "prod", true},
		{[]string{"prod"}, "PROD", true},
		{[]string{"prod"}, "prod2", false},
		{[]string{"web?"}, "web1", true},
		{[]string{"web?"}, "web12", false},
		{[]string{"*.example.com"}, "db.example.com", true},
		{[]string{"*"}, "anything", true},
		{[]string{"a", "b"}, "b", true},
		{[]string{"*", "!bastion"}, "bastion", false},
		{[]string{"*", "!bastion"}, "web1", true},
		{[]string{"!bastion"}, "web1", false},
		{nil, "web1", false},
	}
	for _, tt := range tests {
		h := SSHHost{Patterns: tt.patterns}
		if got := h.Matches(tt.name); got != tt.want {
			t.Errorf("%v.Matches(%q) = %v, want %v", tt.patterns, tt.name, got, tt.want)
		}
	}
}

func TestResolveFromHostBlock(t *testing.T) {
	hosts := []SSHHost{{
		Patterns:     []string{"prod"},
		HostName:     "prod.example.com",
		Port:         "2222",
		User:         "deploy",
		IdentityFile: "/home/user/.ssh/id_rsa",
	}}
	cfg := Default()
	cfg.SSH.User = "fallback"
	ep := cfg.Resolve(hosts, "prod", "", "")
	want := Endpoint{Host: "prod.example.com", Port: "2222", User: "deploy", IdentityFile: "/home/user/.ssh/id_rsa"}
	if ep != want {
		t.Errorf("Resolve() = %+v, want %+v", ep, want)
	}
}

func TestResolveExplicitWins(t *testing.T) {
	hosts := []SSHHost{{Patterns: []string{"prod"}, Port: "2222", User: "deploy"}}
	ep := Default().Resolve(hosts, "prod", "22", "root")
	if ep.Port != "22" || ep.User != "root" {
		t.Errorf("Resolve() = %+v, want explicit port and user", ep)
	}
	if ep.Host != "prod" {
		t.Errorf("Host = %q, want the name itself when no HostName", ep.Host)
	}
}

func TestResolveFirstValueWins(t *testing.T) {
	hosts := ParseSSHConfig(strings.NewReader(`
Host web*
    User deploy

Host web1
    User root
    Port 2201

Host *
    User nobody
    Port 22
    IdentityFile /keys/default
`))
	ep := Default().Resolve(hosts, "web1", "", "")
	if ep.User != "deploy" {
		t.Errorf("User = %q, want deploy from the first matching block", ep.User)
	}
	if ep.Port != "2201" {
		t.Errorf("Port = %q, want 2201", ep.Port)
	}
	if ep.IdentityFile != "/keys/default" {
		t.Errorf("IdentityFile = %q, want the wildcard fallback", ep.IdentityFile)
	}
}

func TestResolveHostNameToken(t *testing.T) {
	hosts := []SSHHost{{Patterns: []string{"*.lan"}, HostName: "%h.example.com"}}
	ep := Default().Resolve(hosts, "nas.lan", "", "u")
	if ep.Host != "nas.lan.example.com" {
		t.Errorf("Host = %q, want %%h expanded", ep.Host)
	}
}

func TestResolveDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USER", "alice")

	cfg := Default()
	ep := cfg.Resolve(nil, "example.com", "", "")
	if ep.Port != "22" {
		t.Errorf("Port = %q, want 22", ep.Port)
	}
	if ep.User != "alice" {
		t.Errorf("User = %q, want $USER", ep.User)
	}
	if ep.IdentityFile != "" {
		t.Errorf("IdentityFile = %q, want empty", ep.IdentityFile)
	}

	cfg.SSH.User = "bob"
	cfg.SSH.IdentityFile = "~/.ssh/id_ed25519"
	ep = cfg.Resolve(nil, "example.com", "", "")
	if ep.User != "bob" {
		t.Errorf("User = %q, want config user", ep.User)
	}
	if want := filepath.Join(home, ".ssh", "id_ed25519"); ep.IdentityFile != want {
		t.Errorf("IdentityFile = %q, want %q", ep.IdentityFile, want)
	}
}

func TestParseSSHConfig(t *testing.T) {
	home, _ := os.UserHomeDir()
	hosts := ParseSSHConfig(strings.NewReader(`
# global options before any Host are ignored
ServerAliveInterval 60

Host webserver web
    HostName 192.168.1.100
    # comment inside a block
    Port=2022
    USER admin
    identityfile ~/.ssh/id_rsa
    User ignored

Host *
    User = "quoted user"
`))
	if len(hosts) != 2 {
		t.Fatalf("got %d hosts, want 2", len(hosts))
	}

	h := hosts[0]
	if strings.Join(h.Patterns, ",") != "webserver,web" {
		t.Errorf("Patterns = %v", h.Patterns)
	}
	if h.HostName != "192.168.1.100" || h.Port != "2022" || h.User != "admin" {
		t.Errorf("hosts[0] = %+v", h)
	}
	if want := filepath.Join(home, ".ssh", "id_rsa"); h.IdentityFile != want {
		t.Errorf("IdentityFile = %q, want %q", h.IdentityFile, want)
	}
	if hosts[1].User != "quoted user" {
		t.Errorf("hosts[1].User = %q, want quotes stripped", hosts[1].User)
	}
}

func TestParseSSHConfigSkipsMatchBlocks(t *testing.T) {
	hosts := ParseSSHConfig(strings.NewReader(`
Host a
    User one
Match host a exec "true"
    User two
Host b
    User three
`))
	if len(hosts) != 2 {
		t.Fatalf("got %d hosts, want 2", len(hosts))
	}
	if hosts[0].User != "one" || hosts[1].User != "three" {
		t.Errorf("hosts = %+v", hosts)
	}
}

func TestParseSSHConfigEmpty(t *testing.T) {
	if hosts := ParseSSHConfig(strings.NewReader("")); len(hosts) != 0 {
		t.Errorf("expected 0 hosts from empty input, got %d", len(hosts))
	}
}

func TestLoadSSHConfigFrom(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(file, []byte("Host filetest\n  HostName file.example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}
	hosts := LoadSSHConfigFrom(file)
	if len(hosts) != 1 || hosts[0].HostName != "file.example.com" {
		t.Errorf("LoadSSHConfigFrom() = %+v", hosts)
	}

	if hosts := LoadSSHConfigFrom("/nonexistent/path/config"); hosts != nil {
		t.Errorf("expected nil for missing file, got %v", hosts)
	}
}

func TestSplitSSHConfigLine(t *testing.T) {
	tests := []struct {
		line, key, val string
	}{
		{"HostName example.com", "HostName", "example.com"},
		{"Port=2222", "Port", "2222"},
		{"Port = 2222", "Port", "2222"},
		{"User\tadmin", "User", "admin"},
		{"Host", "Host", ""},
	}
	for _, tt := range tests {
		key, val := splitSSHConfigLine(tt.line)
		if key != tt.key || val != tt.val {
			t.Errorf("splitSSHConfigLine(%q) = (%q, %q), want (%q, %q)", tt.line, key, val, tt.key, tt.val)
		}
	}
}

func TestExpandTilde(t *testing.T) {
	home := "/home/testuser"
	tests := []struct {
		input string
		want  string
	}{
		{"~/foo/bar", filepath.Join(home, "foo", "bar")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		if got := expandTilde(tt.input, home); got != tt.want {
			t.Errorf("expandTilde(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
