package scene

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/reflectwalk"
)

var (
	// ErrInvalidRadius is returned when the sphere radius is not positive.
	ErrInvalidRadius = errors.New("radius must be positive")

	// ErrInvalidConfig is returned when an option is outside its allowed range.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrNonFinite is returned when any numeric option is NaN or infinite.
	ErrNonFinite = errors.New("non-finite value")
)

// Config is every tunable of a globe scene. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// Radius of the sphere the items sit on, in world units.
	Radius float64 `json:"radius"`

	AutoRotate bool `json:"autoRotate"`
	// AutoRotateSpeed is the idle spin rate in radians per second. Negative values spin
	// the other way.
	AutoRotateSpeed float64 `json:"autoRotateSpeed"`
	// DragSensitivity is the rotation in radians for a drag across the surface's shorter side.
	DragSensitivity float64 `json:"dragSensitivity"`
	// DecayRate is the exponential momentum decay per second.
	DecayRate float64 `json:"decayRate"`
	// ResumeDelay is the idle time in seconds before auto spin resumes.
	ResumeDelay float64 `json:"resumeDelay"`
	// ReleaseThreshold is the angular speed below which a release or decay comes to rest.
	ReleaseThreshold float64 `json:"releaseThreshold"`

	// LineColor is the wireframe RGBA color in [0, 1].
	LineColor [4]float64 `json:"lineColor"`
	// LineOpacity scales every wireframe segment.
	LineOpacity float64 `json:"lineOpacity"`
	// LineWidth is the wireframe width in pixels.
	LineWidth float64 `json:"lineWidth"`

	// IconSize is the billboard edge length in world units.
	IconSize float64 `json:"iconSize"`
	// IconOffset lifts billboards off the sphere surface, in world units.
	IconOffset float64 `json:"iconOffset"`

	MinOpacity    float64 `json:"minOpacity"`
	DepthExponent float64 `json:"depthExponent"`

	// FovY is the vertical field of view in degrees.
	FovY    float64 `json:"fovY"`
	Padding float64 `json:"padding"`

	// HullEpsilon is the plane-side tolerance of the default hull builder.
	HullEpsilon float64 `json:"hullEpsilon"`

	// CameraAzimuth and CameraElevation place the orbit camera, in degrees.
	CameraAzimuth   float64 `json:"cameraAzimuth"`
	CameraElevation float64 `json:"cameraElevation"`
}

// DefaultConfig returns the configuration a scene starts with.
func DefaultConfig() Config {
	return Config{
		Radius:           1.6,
		AutoRotate:       true,
		AutoRotateSpeed:  0.25,
		DragSensitivity:  math.Pi,
		DecayRate:        2.5,
		ResumeDelay:      1.0,
		ReleaseThreshold: 0.05,
		LineColor:        [4]float64{0.55, 0.75, 1, 1},
		LineOpacity:      0.35,
		LineWidth:        1.5,
		IconSize:         0.28,
		IconOffset:       0.02,
		MinOpacity:       0.15,
		DepthExponent:    1.5,
		FovY:             45,
		Padding:          1.15,
		HullEpsilon:      1e-10,
	}
}

// Validate reports the first problem with c. Non-finite numbers are checked before ranges.
//
// Returns:
//   - error: nil, or an error wrapping ErrNonFinite, ErrInvalidRadius or ErrInvalidConfig
func (c Config) Validate() error {
	w := &finiteWalker{}
	if err := reflectwalk.Walk(c, w); err != nil {
		return err
	}

	if c.Radius <= 0 {
		return fmt.Errorf("radius %g: %w", c.Radius, ErrInvalidRadius)
	}

	checks := []struct {
		name string
		ok   bool
	}{
		{"fovY", c.FovY > 0 && c.FovY < 180},
		{"padding", c.Padding > 0},
		{"depthExponent", c.DepthExponent > 0},
		{"minOpacity", c.MinOpacity >= 0 && c.MinOpacity <= 1},
		{"lineOpacity", c.LineOpacity >= 0 && c.LineOpacity <= 1},
		{"lineWidth", c.LineWidth >= 0},
		{"iconSize", c.IconSize >= 0},
		{"iconOffset", c.IconOffset >= 0},
		{"dragSensitivity", c.DragSensitivity > 0},
		{"decayRate", c.DecayRate > 0},
		{"resumeDelay", c.ResumeDelay >= 0},
		{"releaseThreshold", c.ReleaseThreshold > 0},
		{"hullEpsilon", c.HullEpsilon > 0},
		{"cameraElevation", c.CameraElevation > -90 && c.CameraElevation < 90},
	}
	for _, ch := range checks {
		if !ch.ok {
			return fmt.Errorf("%s: %w", ch.name, ErrInvalidConfig)
		}
	}
	for i, v := range c.LineColor {
		if v < 0 || v > 1 {
			return fmt.Errorf("lineColor[%d] = %g: %w", i, v, ErrInvalidConfig)
		}
	}
	return nil
}

// finiteWalker rejects NaN and infinite floats anywhere in a walked value and remembers
// the struct field it is in for the error message.
type finiteWalker struct {
	field string
}

func (w *finiteWalker) Struct(reflect.Value) error {
	return nil
}

func (w *finiteWalker) StructField(f reflect.StructField, _ reflect.Value) error {
	w.field = f.Name
	if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" {
		w.field = tag
	}
	return nil
}

func (w *finiteWalker) Primitive(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%s = %g: %w", w.field, f, ErrNonFinite)
		}
	}
	return nil
}
