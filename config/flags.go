package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/spf13/cobra"
)

// Flags are the command line flags every globe host shares. Values only override the
// settings file when the flag was set explicitly.
type Flags struct {
	Settings string
	JSONLogs bool
	Debug    bool

	Radius     float64
	AutoRotate bool
	Speed      float64
	Fov        float64
	Padding    float64
	Elevation  float64

	Width      int
	Height     int
	IconDir    string
	IconPixels int
	Backend    string
	VSync      bool
	Profile    bool

	Items []string
}

// BindFlags registers the shared flags on cmd.
//
// Parameters:
//   - cmd: the command to register the flags on
//
// Returns:
//   - *Flags: the flag values, filled in when cmd parses its arguments
func BindFlags(cmd *cobra.Command) *Flags {
	def := Default()
	f := &Flags{}
	fs := cmd.Flags()

	fs.StringVarP(&f.Settings, "settings", "s", "", "JSON settings file (items, scene and host settings)")
	fs.BoolVar(&f.JSONLogs, "json-logs", false, "Write production JSON logs instead of console logs")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")

	fs.Float64Var(&f.Radius, "radius", def.Scene.Radius, "Sphere radius in world units")
	fs.BoolVar(&f.AutoRotate, "auto-rotate", def.Scene.AutoRotate, "Spin the globe when idle")
	fs.Float64Var(&f.Speed, "speed", def.Scene.AutoRotateSpeed, "Idle spin speed in radians per second")
	fs.Float64Var(&f.Fov, "fov", def.Scene.FovY, "Vertical field of view in degrees")
	fs.Float64Var(&f.Padding, "padding", def.Scene.Padding, "Camera padding factor around the sphere")
	fs.Float64Var(&f.Elevation, "elevation", def.Scene.CameraElevation, "Camera elevation in degrees")

	fs.IntVar(&f.Width, "width", def.Host.Width, "Surface width in pixels")
	fs.IntVar(&f.Height, "height", def.Host.Height, "Surface height in pixels")
	fs.StringVar(&f.IconDir, "icons", def.Host.IconDir, "Directory icon references resolve against")
	fs.IntVar(&f.IconPixels, "icon-pixels", def.Host.IconPixels, "Icon edge length in pixels")
	fs.StringVar(&f.Backend, "backend", def.Host.Backend, "Renderer backend (wgpu or software)")
	fs.BoolVar(&f.VSync, "vsync", def.Host.VSync, "Present frames on vertical sync")
	fs.BoolVar(&f.Profile, "profile", def.Host.Profile, "Log frame rate and memory statistics")

	fs.StringArrayVarP(&f.Items, "item", "i", nil, "Item as label or label=icon, repeatable; replaces the file's items")
	return f
}

// Resolve builds the effective settings: defaults, then the settings file when one was
// given, then every flag set explicitly on cmd.
//
// Parameters:
//   - cmd: the command whose flags were parsed
//
// Returns:
//   - Settings: the validated settings
//   - error: an error if the file cannot be loaded or the result is invalid
func (f *Flags) Resolve(cmd *cobra.Command) (Settings, error) {
	s := Default()
	if f.Settings != "" {
		loaded, err := Load(f.Settings)
		if err != nil {
			return Settings{}, err
		}
		s = loaded
	}
	return f.Overlay(cmd, s)
}

// Overlay applies every flag set explicitly on cmd to s. An empty icon directory becomes
// the settings file's directory.
//
// Parameters:
//   - cmd: the command whose flags were parsed
//   - s: the settings to overlay, usually loaded from the settings file
//
// Returns:
//   - Settings: the validated settings
//   - error: an error if the result is invalid
func (f *Flags) Overlay(cmd *cobra.Command, s Settings) (Settings, error) {
	if s.Host.IconDir == "" && f.Settings != "" {
		s.Host.IconDir = filepath.Dir(f.Settings)
	}

	fs := cmd.Flags()
	changed := fs.Changed
	if changed("radius") {
		s.Scene.Radius = f.Radius
	}
	if changed("auto-rotate") {
		s.Scene.AutoRotate = f.AutoRotate
	}
	if changed("speed") {
		s.Scene.AutoRotateSpeed = f.Speed
	}
	if changed("fov") {
		s.Scene.FovY = f.Fov
	}
	if changed("padding") {
		s.Scene.Padding = f.Padding
	}
	if changed("elevation") {
		s.Scene.CameraElevation = f.Elevation
	}
	if changed("width") {
		s.Host.Width = f.Width
	}
	if changed("height") {
		s.Host.Height = f.Height
	}
	if changed("icons") {
		s.Host.IconDir = f.IconDir
	}
	if changed("icon-pixels") {
		s.Host.IconPixels = f.IconPixels
	}
	if changed("backend") {
		s.Host.Backend = f.Backend
	}
	if changed("vsync") {
		s.Host.VSync = f.VSync
	}
	if changed("profile") {
		s.Host.Profile = f.Profile
	}
	if changed("item") {
		s.Items = ParseItems(f.Items)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config: flags: %w", err)
	}
	return s, nil
}

// ParseItems turns "label" and "label=icon" arguments into items. Surrounding spaces
// are trimmed.
//
// Parameters:
//   - args: the item arguments
//
// Returns:
//   - []common.Item: one item per argument
func ParseItems(args []string) []common.Item {
	items := make([]common.Item, 0, len(args))
	for _, arg := range args {
		label, icon, _ := strings.Cut(arg, "=")
		items = append(items, common.Item{
			Label: strings.TrimSpace(label),
			Icon:  strings.TrimSpace(icon),
		})
	}
	return items
}
