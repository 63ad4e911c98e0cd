// Package config holds the airpaint runtime configuration: built-in defaults
// overlaid with overrides stored in the settings table.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ayusman/airpaint/internal/compositor"
	"github.com/ayusman/airpaint/internal/detector"
	"github.com/ayusman/airpaint/internal/drawing"
	"github.com/ayusman/airpaint/internal/gesture"
	"github.com/ayusman/airpaint/internal/session"
)

var (
	// ErrInvalid is returned when a configuration value is out of range.
	ErrInvalid = errors.New("invalid configuration")
	// ErrUnknownKey is returned for setting keys Config does not recognize.
	ErrUnknownKey = errors.New("unknown setting")
)

// Config holds every tunable of the application. JSON tags double as the
// setting keys.
type Config struct {
	Palette             []drawing.Swatch `json:"palette"`
	MinBrushRadius      int              `json:"min_brush_radius"`
	MaxBrushRadius      int              `json:"max_brush_radius"`
	DefaultBrushRadius  int              `json:"default_brush_radius"`
	ColorBandBoundaries []float64        `json:"color_band_boundaries"`

	ExtensionRatio float64 `json:"extension_ratio"`
	SpreadRatio    float64 `json:"spread_ratio"`
	BrushSizeScale float64 `json:"brush_size_scale"`

	CameraDevice    int     `json:"camera_device"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Mirror          bool    `json:"mirror"`
	IdleFPS         int     `json:"idle_fps"`
	ActiveFPS       int     `json:"active_fps"`
	MotionThreshold float64 `json:"motion_threshold"`

	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`

	Window        bool   `json:"window"`
	ShowLandmarks bool   `json:"show_landmarks"`
	ShowFPS       bool   `json:"show_fps"`
	HTTPAddr      string `json:"http_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	g := gesture.DefaultConfig()
	d := drawing.DefaultConfig()
	det := detector.DefaultConfig()
	return Config{
		Palette:             d.Palette,
		MinBrushRadius:      d.MinBrushRadius,
		MaxBrushRadius:      d.MaxBrushRadius,
		DefaultBrushRadius:  d.DefaultBrushRadius,
		ColorBandBoundaries: g.BandBoundaries,

		ExtensionRatio: g.ExtensionRatio,
		SpreadRatio:    g.SpreadRatio,
		BrushSizeScale: g.BrushSizeScale,

		CameraDevice:    0,
		Width:           1280,
		Height:          720,
		Mirror:          true,
		IdleFPS:         5,
		ActiveFPS:       15,
		MotionThreshold: 1.0,

		MinDetectionConfidence: det.MinConfidence,
		MinTrackingConfidence:  det.MinTrackingConf,

		Window:        true,
		ShowLandmarks: true,
		ShowFPS:       true,
		HTTPAddr:      "127.0.0.1:8421",
	}
}

// fields maps every setting key to the field it decodes into.
func (c *Config) fields() map[string]any {
	return map[string]any{
		"palette":                  &c.Palette,
		"min_brush_radius":         &c.MinBrushRadius,
		"max_brush_radius":         &c.MaxBrushRadius,
		"default_brush_radius":     &c.DefaultBrushRadius,
		"color_band_boundaries":    &c.ColorBandBoundaries,
		"extension_ratio":          &c.ExtensionRatio,
		"spread_ratio":             &c.SpreadRatio,
		"brush_size_scale":         &c.BrushSizeScale,
		"camera_device":            &c.CameraDevice,
		"width":                    &c.Width,
		"height":                   &c.Height,
		"mirror":                   &c.Mirror,
		"idle_fps":                 &c.IdleFPS,
		"active_fps":               &c.ActiveFPS,
		"motion_threshold":         &c.MotionThreshold,
		"min_detection_confidence": &c.MinDetectionConfidence,
		"min_tracking_confidence":  &c.MinTrackingConfidence,
		"window":                   &c.Window,
		"show_landmarks":           &c.ShowLandmarks,
		"show_fps":                 &c.ShowFPS,
		"http_addr":                &c.HTTPAddr,
	}
}

// Keys returns the recognized setting keys in sorted order.
func Keys() []string {
	var c Config
	keys := make([]string, 0, len(c.fields()))
	for k := range c.fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set decodes a JSON value into the field named by key. It does not validate
// the result as a whole.
func (c *Config) Set(key, value string) error {
	field, ok := c.fields()[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if err := json.Unmarshal([]byte(value), field); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
	}
	return nil
}

// Load overlays the stored settings on the defaults and validates the result.
func Load(settings map[string]string) (Config, error) {
	c := Default()
	// Sorted for deterministic error reporting.
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := c.Set(k, settings[k]); err != nil {
			return Config{}, err
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Source supplies stored overrides, such as store.SettingsRepository.
type Source interface {
	All() (map[string]string, error)
}

// LoadFrom reads the overrides from src and calls Load.
func LoadFrom(src Source) (Config, error) {
	settings, err := src.All()
	if err != nil {
		return Config{}, fmt.Errorf("read settings: %w", err)
	}
	return Load(settings)
}

// Validate reports the first problem with c, wrapped in ErrInvalid.
func (c Config) Validate() error {
	if err := c.Drawing().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(c.ColorBandBoundaries) != len(c.Palette)-1 {
		return fmt.Errorf("%w: %d palette entries need %d band boundaries, got %d",
			ErrInvalid, len(c.Palette), len(c.Palette)-1, len(c.ColorBandBoundaries))
	}
	prev := 0.0
	for _, b := range c.ColorBandBoundaries {
		if b <= prev || b >= 1 {
			return fmt.Errorf("%w: band boundaries must increase strictly within (0, 1), got %v",
				ErrInvalid, c.ColorBandBoundaries)
		}
		prev = b
	}

	positive := []struct {
		name  string
		value float64
	}{
		{"extension_ratio", c.ExtensionRatio},
		{"spread_ratio", c.SpreadRatio},
		{"brush_size_scale", c.BrushSizeScale},
		{"width", float64(c.Width)},
		{"height", float64(c.Height)},
		{"idle_fps", float64(c.IdleFPS)},
		{"active_fps", float64(c.ActiveFPS)},
		{"motion_threshold", c.MotionThreshold},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, p.name, p.value)
		}
	}

	if c.CameraDevice < 0 {
		return fmt.Errorf("%w: camera_device %d", ErrInvalid, c.CameraDevice)
	}
	for _, conf := range []float64{c.MinDetectionConfidence, c.MinTrackingConfidence} {
		if conf < 0 || conf > 1 {
			return fmt.Errorf("%w: confidence %v outside [0, 1]", ErrInvalid, conf)
		}
	}
	return nil
}

// Drawing returns the drawing state options.
func (c Config) Drawing() drawing.Config {
	return drawing.Config{
		Palette:            c.Palette,
		MinBrushRadius:     c.MinBrushRadius,
		MaxBrushRadius:     c.MaxBrushRadius,
		DefaultBrushRadius: c.DefaultBrushRadius,
	}
}

// Gesture returns the classifier options.
func (c Config) Gesture() gesture.Config {
	return gesture.Config{
		ExtensionRatio: c.ExtensionRatio,
		SpreadRatio:    c.SpreadRatio,
		BrushSizeScale: c.BrushSizeScale,
		BandBoundaries: c.ColorBandBoundaries,
	}
}

// Detector returns the hand tracker options.
func (c Config) Detector() detector.Config {
	return detector.Config{
		MaxHands:        1,
		MinConfidence:   c.MinDetectionConfidence,
		MinTrackingConf: c.MinTrackingConfidence,
	}
}

// Session returns the options of one painting session.
func (c Config) Session() session.Config {
	comp := compositor.DefaultConfig()
	comp.BandBoundaries = c.ColorBandBoundaries
	comp.ShowLandmarks = c.ShowLandmarks
	comp.ShowFPS = c.ShowFPS
	return session.Config{
		Width:      c.Width,
		Height:     c.Height,
		Gesture:    c.Gesture(),
		Drawing:    c.Drawing(),
		Compositor: comp,
	}
}
