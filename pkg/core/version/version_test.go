package version

import (
	"regexp"
	"strings"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionConstants(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"Release", Release},
		{"Language", Language},
		{"Engine", Engine},
		{"Server", Server},
		{"Playground", Playground},
		{"History", History},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.version == "" {
				t.Errorf("%s version is empty", tt.name)
			}
			if !semverRegex.MatchString(tt.version) {
				t.Errorf("%s version %q does not match semver format (x.y.z)", tt.name, tt.version)
			}
		})
	}
}

func TestComponentVersion(t *testing.T) {
	tests := []struct {
		name      string
		component string
		expected  string
	}{
		{"language", "language", Language},
		{"engine", "engine", Engine},
		{"server", "server", Server},
		{"playground", "playground", Playground},
		{"history", "history", History},
		{"unknown component", "unknown", Release},
		{"empty component", "", Release},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComponentVersion(tt.component)
			if result != tt.expected {
				t.Errorf("ComponentVersion(%q) = %q, want %q", tt.component, result, tt.expected)
			}
		})
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, "kylang "+Release) {
		t.Errorf("Info() = %q, want prefix kylang %s", info, Release)
	}
	if !strings.Contains(info, "language "+Language) {
		t.Errorf("Info() = %q, want language version", info)
	}
}
