package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/engine/scene"
	"github.com/spf13/cobra"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseKeepsDefaults(t *testing.T) {
	s, err := Parse([]byte(`{"items":[{"label":"go","icon":"go.png"},{"label":"rust"}],"scene":{"radius":2.5}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Scene.Radius != 2.5 {
		t.Errorf("radius = %g, want 2.5", s.Scene.Radius)
	}
	def := Default()
	if s.Scene.FovY != def.Scene.FovY || s.Host.Width != def.Host.Width {
		t.Errorf("missing fields lost their defaults: %+v", s)
	}
	if len(s.Items) != 2 || s.Items[0].Icon != "go.png" || s.Items[1].Icon != "" {
		t.Errorf("items = %+v", s.Items)
	}
	if refs := s.IconRefs(); len(refs) != 1 || refs[0] != "go.png" {
		t.Errorf("IconRefs = %v", refs)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"radius", `{"scene":{"radius":0}}`, scene.ErrInvalidRadius},
		{"fov", `{"scene":{"fovY":181}}`, scene.ErrInvalidConfig},
		{"duplicate", `{"items":[{"label":"a"},{"label":"a"}]}`, ErrDuplicateLabel},
		{"empty label", `{"items":[{"icon":"x.png"}]}`, ErrEmptyLabel},
		{"backend", `{"host":{"backend":"vulkan"}}`, ErrInvalidHost},
		{"size", `{"host":{"width":0}}`, ErrInvalidHost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Parse([]byte(`{"scene":{"radios":1}}`)); err == nil {
		t.Error("unknown field accepted")
	}
	if _, err := Parse([]byte(`{`)); err == nil {
		t.Error("truncated document accepted")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func newCommand() (*cobra.Command, *Flags) {
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	return cmd, BindFlags(cmd)
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "globe.json")
	writeFile(t, path, `{"items":[{"label":"a"}],"scene":{"radius":2,"fovY":50},"host":{"width":640}}`)

	cmd, flags := newCommand()
	if err := cmd.ParseFlags([]string{"--settings", path, "--radius", "3", "--item", "x=x.png", "--item", " y "}); err != nil {
		t.Fatal(err)
	}
	s, err := flags.Resolve(cmd)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if s.Scene.Radius != 3 {
		t.Errorf("radius = %g, want flag value 3", s.Scene.Radius)
	}
	if s.Scene.FovY != 50 {
		t.Errorf("fov = %g, want file value 50", s.Scene.FovY)
	}
	if s.Host.Width != 640 || s.Host.Height != Default().Host.Height {
		t.Errorf("size = %dx%d", s.Host.Width, s.Host.Height)
	}
	if s.Host.IconDir != dir {
		t.Errorf("icon dir = %q, want the settings directory", s.Host.IconDir)
	}
	if len(s.Items) != 2 || s.Items[0].Label != "x" || s.Items[0].Icon != "x.png" || s.Items[1].Label != "y" {
		t.Errorf("items = %+v", s.Items)
	}
}

func TestResolveDefaultsAndInvalidFlag(t *testing.T) {
	cmd, flags := newCommand()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	s, err := flags.Resolve(cmd)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.Scene != scene.DefaultConfig() {
		t.Errorf("scene = %+v, want defaults", s.Scene)
	}

	cmd, flags = newCommand()
	if err := cmd.ParseFlags([]string{"--radius", "-1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := flags.Resolve(cmd); !errors.Is(err, scene.ErrInvalidRadius) {
		t.Fatalf("err = %v, want ErrInvalidRadius", err)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globe.json")
	writeFile(t, path, `{"scene":{"radius":1}}`)

	type result struct {
		s   Settings
		err error
	}
	results := make(chan result, 8)
	w, err := NewWatcher(path, func(s Settings, err error) { results <- result{s, err} }, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	next := func() result {
		t.Helper()
		select {
		case r := <-results:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("no reload within 5s")
			return result{}
		}
	}

	writeFile(t, path, `{"scene":{"radius":4}}`)
	if r := next(); r.err != nil || r.s.Scene.Radius != 4 {
		t.Fatalf("reload = %+v, %v", r.s.Scene, r.err)
	}

	writeFile(t, path, `{"scene":{"radius":-4}}`)
	if r := next(); !errors.Is(r.err, scene.ErrInvalidRadius) {
		t.Fatalf("invalid reload err = %v", r.err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
