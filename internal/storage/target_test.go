package storage

import "testing"

func TestParseTarget(t *testing.T) {
	tests := []struct {
		in   string
		want Target
	}{
		{"", Target{}},
		{"notes.txt", Target{Path: "notes.txt"}},
		{"/etc/hosts", Target{Path: "/etc/hosts"}},
		{"./odd:name", Target{Path: "./odd:name"}},
		{"dir/odd:name", Target{Path: "dir/odd:name"}},
		{"user@host", Target{Path: "user@host"}},
		{"web1:/etc/motd", Target{Host: "web1", Path: "/etc/motd"}},
		{"deploy@web1:app.conf", Target{User: "deploy", Host: "web1", Path: "app.conf"}},
		{"root@[::1]:/tmp/x", Target{User: "root", Host: "::1", Path: "/tmp/x"}},
		{"ssh://deploy@web1:2222/srv/a.txt", Target{User: "deploy", Host: "web1", Port: "2222", Path: "/srv/a.txt"}},
		{"ssh://web1/~/notes.txt", Target{Host: "web1", Path: "notes.txt"}},
	}
	for _, tt := range tests {
		got, err := ParseTarget(tt.in)
		if err != nil {
			t.Errorf("ParseTarget(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTarget(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseTargetErrors(t *testing.T) {
	for _, in := range []string{"web1:", "user@:file", "ssh://web1", "ssh://web1/", "ssh:///path"} {
		if _, err := ParseTarget(in); err == nil {
			t.Errorf("ParseTarget(%q) expected error", in)
		}
	}
}

func TestTargetRemote(t *testing.T) {
	if (Target{Path: "a"}).Remote() {
		t.Error("local target reported remote")
	}
	if !(Target{Host: "h", Path: "a"}).Remote() {
		t.Error("remote target reported local")
	}
}

func TestTargetString(t *testing.T) {
	tests := []struct {
		in   Target
		want string
	}{
		{Target{Path: "a.txt"}, "a.txt"},
		{Target{Host: "web1", Path: "/etc/motd"}, "web1:/etc/motd"},
		{Target{User: "u", Host: "::1", Path: "x"}, "u@[::1]:x"},
		{Target{User: "u", Host: "h", Port: "2222", Path: "/x"}, "ssh://u@h:2222/x"},
		{Target{Host: "h", Port: "22", Path: "rel.txt"}, "ssh://h:22/~/rel.txt"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.in, got, tt.want)
		}
		back, err := ParseTarget(tt.in.String())
		if err != nil {
			t.Errorf("ParseTarget(%q) error = %v", tt.in.String(), err)
			continue
		}
		if back != tt.in {
			t.Errorf("round trip of %+v = %+v", tt.in, back)
		}
	}
}
