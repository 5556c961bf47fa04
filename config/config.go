// Package config loads the JSON settings file shared by the globe hosts, overlays command
// line flags on it and hot reloads it when the file changes.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/scene"
)

var (
	// ErrDuplicateLabel is returned when two items share a label.
	ErrDuplicateLabel = errors.New("duplicate item label")

	// ErrEmptyLabel is returned for an item without a label.
	ErrEmptyLabel = errors.New("empty item label")

	// ErrInvalidHost is returned for host settings outside their range.
	ErrInvalidHost = errors.New("invalid host settings")
)

// Host holds the settings of the program showing the globe, as opposed to the globe itself.
type Host struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Title  string `json:"title"`

	// IconDir is the directory relative icon references resolve against. Empty means
	// the settings file's directory.
	IconDir string `json:"iconDir"`
	// IconPixels is the edge length icons are scaled to.
	IconPixels int `json:"iconPixels"`

	// Backend selects the renderer: "wgpu" or "software".
	Backend string `json:"backend"`
	VSync   bool   `json:"vsync"`
	MSAA    bool   `json:"msaa"`
	Profile bool   `json:"profile"`
	// Background is the clear color, RGBA in [0, 1].
	Background [4]float64 `json:"background"`
}

// Settings is the whole settings file.
type Settings struct {
	Items []common.Item `json:"items"`
	Scene scene.Config  `json:"scene"`
	Host  Host          `json:"host"`
}

// Default returns the settings used when no file or flag says otherwise.
func Default() Settings {
	return Settings{
		Items: []common.Item{},
		Scene: scene.DefaultConfig(),
		Host: Host{
			Width:      1280,
			Height:     720,
			Title:      "oxy-globe",
			IconPixels: 64,
			Backend:    "wgpu",
			VSync:      true,
			MSAA:       true,
			Background: [4]float64{0.05, 0.06, 0.09, 1},
		},
	}
}

// Load reads a settings file. Fields missing from the file keep their defaults.
//
// Parameters:
//   - path: the settings file
//
// Returns:
//   - Settings: the validated settings
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes settings JSON over the defaults and validates the result. Unknown fields
// are rejected.
//
// Parameters:
//   - data: the JSON document
//
// Returns:
//   - Settings: the validated settings
//   - error: an error if data cannot be parsed or validated
func Parse(data []byte) (Settings, error) {
	s := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("decode: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the scene config, the item labels and the host settings.
//
// Returns:
//   - error: the first problem found, or nil
func (s Settings) Validate() error {
	if err := s.Scene.Validate(); err != nil {
		return fmt.Errorf("scene: %w", err)
	}

	seen := make(map[string]int, len(s.Items))
	for i, item := range s.Items {
		if item.Label == "" {
			return fmt.Errorf("items[%d]: %w", i, ErrEmptyLabel)
		}
		if j, dup := seen[item.Label]; dup {
			return fmt.Errorf("items[%d] and items[%d] %q: %w", j, i, item.Label, ErrDuplicateLabel)
		}
		seen[item.Label] = i
	}

	h := s.Host
	switch {
	case h.Width <= 0 || h.Height <= 0:
		return fmt.Errorf("size %dx%d: %w", h.Width, h.Height, ErrInvalidHost)
	case h.IconPixels < 0:
		return fmt.Errorf("iconPixels %d: %w", h.IconPixels, ErrInvalidHost)
	case h.Backend != "wgpu" && h.Backend != "software":
		return fmt.Errorf("backend %q: %w", h.Backend, ErrInvalidHost)
	}
	for i, v := range h.Background {
		if v < 0 || v > 1 {
			return fmt.Errorf("background[%d] = %g: %w", i, v, ErrInvalidHost)
		}
	}
	return nil
}

// IconRefs returns the non-empty icon references in item order.
func (s Settings) IconRefs() []string {
	out := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Icon != "" {
			out = append(out, item.Icon)
		}
	}
	return out
}
