package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.Canvas.Width != 1500 || c.Canvas.Height != 2100 {
		t.Errorf("canvas = %vx%v, want 1500x2100", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Snap.Distance != 5 || c.Snap.GridSize != 20 || c.Snap.Grid || c.Snap.Disabled {
		t.Errorf("snap = %+v", c.Snap)
	}
	if c.History.Limit != 50 {
		t.Errorf("history limit = %d, want 50", c.History.Limit)
	}
	if c.Images.RateLimit != 8 || c.Images.Burst != 4 || c.Images.CacheTTL != 10*time.Minute {
		t.Errorf("images = %+v", c.Images)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.yaml")
	data := `
canvas:
  width: 800
  height: 600
snap:
  distance: 8
  grid: true
history:
  limit: 10
images:
  fetch_timeout: 5s
  rate_limit: 0
  base_dir: /srv/uploads
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.Canvas.Width != 800 || c.Canvas.Height != 600 {
		t.Errorf("canvas = %vx%v", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Snap.Distance != 8 || !c.Snap.Grid || c.Snap.GridSize != 20 {
		t.Errorf("snap = %+v", c.Snap)
	}
	if c.History.Limit != 10 {
		t.Errorf("history limit = %d", c.History.Limit)
	}
	if c.Images.FetchTimeout != 5*time.Second || c.Images.RateLimit != 0 || c.Images.BaseDir != "/srv/uploads" {
		t.Errorf("images = %+v", c.Images)
	}
	if lvl, _ := c.Log.SlogLevel(); lvl != slog.LevelDebug {
		t.Errorf("level = %v, want debug", lvl)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); !os.IsNotExist(err) {
		t.Errorf("err = %v, want not-exist", err)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"syntax", "canvas: [", "config:"},
		{"negative canvas", "canvas:\n  width: -1", "canvas size"},
		{"negative limit", "history:\n  limit: -3", "history limit"},
		{"level", "log:\n  level: loud", "unknown log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}
