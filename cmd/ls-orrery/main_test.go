package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/litescript/ls-orrery/internal/report"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out) != "ls-orrery v"+version.Version {
		t.Errorf("version output = %q", out)
	}
}

func TestConfigCmd(t *testing.T) {
	out, err := execute(t, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"fps: 30", "log_level: info", "asteroid:", "a: 3.1347518"} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCmdFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.yaml")
	if err := os.WriteFile(path, []byte("fps: 60\nlog_level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "config", "--config", path, "--log-level", "debug")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(out, "fps: 60") {
		t.Errorf("file value not applied:\n%s", out)
	}
	if !strings.Contains(out, "log_level: debug") {
		t.Errorf("flag did not override file:\n%s", out)
	}
}

func TestConfigCmdInvalidFlag(t *testing.T) {
	if _, err := execute(t, "config", "--log-level", "loud"); err == nil {
		t.Error("expected validation error for bad log level")
	}
}

func TestSnapshotCmd(t *testing.T) {
	out, err := execute(t, "snapshot", "--at", "2024-10-17")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	for _, want := range []string{"Orrery @ 2024-10-17T00:00:00Z", "333005 Haberle", "Distance to Earth:"} {
		if !strings.Contains(out, want) {
			t.Errorf("snapshot missing %q:\n%s", want, out)
		}
	}
}

func TestSnapshotCmdJSON(t *testing.T) {
	out, err := execute(t, "snapshot", "--at", "2024-10-17T12:00:00Z", "--json")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	var snap report.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(snap.Bodies) != 5 {
		t.Errorf("got %d bodies, want 5", len(snap.Bodies))
	}
	if snap.AsteroidEarthAU <= 0 {
		t.Errorf("AsteroidEarthAU = %v", snap.AsteroidEarthAU)
	}
}

func TestSnapshotCmdToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	if _, err := execute(t, "snapshot", "--json", "-o", path); err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"bodies"`)) {
		t.Errorf("snapshot file = %s", data)
	}
}

func TestSnapshotCmdBadTime(t *testing.T) {
	if _, err := execute(t, "snapshot", "--at", "yesterday"); err == nil {
		t.Error("expected error for unparseable --at")
	}
}

func TestOrbitCmd(t *testing.T) {
	out, err := execute(t, "orbit", "--segments", "4")
	if err != nil {
		t.Fatalf("orbit failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d points, want 5:\n%s", len(lines), out)
	}
	if lines[0] != lines[4] {
		t.Errorf("orbit not closed: first %q, last %q", lines[0], lines[4])
	}
}

func TestOrbitCmdErrors(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"sun", "has no orbit"},
		{"pluto", "unknown body"},
	}
	for _, tt := range tests {
		_, err := execute(t, "orbit", "--body", tt.body)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("orbit --body %s: err = %v, want %q", tt.body, err, tt.want)
		}
	}
}

func TestTexturesCmd(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "textures", "--out", dir, "--size", "16", "--seed", "7")
	if err != nil {
		t.Fatalf("textures failed: %v", err)
	}
	if n := strings.Count(out, "wrote "); n != 5 {
		t.Errorf("wrote %d files, want 5:\n%s", n, out)
	}

	sizes := map[string]int{"sun.png": 16, "jupiter.png": 16, "asteroid.png": 8}
	for name, want := range sizes {
		file, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		cfg, err := png.DecodeConfig(file)
		file.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", name, err)
		}
		if cfg.Width != want || cfg.Height != want {
			t.Errorf("%s is %dx%d, want %dx%d", name, cfg.Width, cfg.Height, want, want)
		}
	}
}

func TestRootNeedsTerminal(t *testing.T) {
	_, err := execute(t)
	if !errors.Is(err, scene.ErrEnvironmentUnsupported) {
		t.Errorf("root without a TTY: err = %v, want ErrEnvironmentUnsupported", err)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2024-10-17", time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC), false},
		{"2024-10-17T06:30:00Z", time.Date(2024, 10, 17, 6, 30, 0, 0, time.UTC), false},
		{"17/10/2024", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := parseTime(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("parseTime(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if got, err := parseTime(""); err != nil || time.Since(got) > time.Minute {
		t.Errorf("parseTime(\"\") = %v, %v; want now", got, err)
	}
}

func TestHeadlessCmd(t *testing.T) {
	out, err := execute(t, "headless", "--duration", "150ms", "--fps", "50")
	if err != nil {
		t.Fatalf("headless failed: %v", err)
	}
	if strings.HasPrefix(out, "0 frames") {
		t.Errorf("no frames rendered:\n%s", out)
	}
	for _, want := range []string{" frames", "Date: ", "Distance to Earth: "} {
		if !strings.Contains(out, want) {
			t.Errorf("headless output missing %q:\n%s", want, out)
		}
	}
}
