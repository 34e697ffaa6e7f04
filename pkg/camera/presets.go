package camera

// Preset names for common configurations
const (
	PresetDefault = "default"
	PresetHD      = "720p"
	PresetFullHD  = "1080p"
	PresetFast    = "fast"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetHD:      HD720Config(),
		PresetFullHD:  HD1080Config(),
		PresetFast:    FastConfig(),
	}
}

// PresetNames returns the list of available preset names.
func PresetNames() []string {
	return []string{PresetDefault, PresetHD, PresetFullHD, PresetFast}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	if cfg, ok := Presets()[name]; ok {
		return &cfg
	}
	return nil
}

// HD720Config returns 720p. Contours grow with resolution, so the detection
// area and radius limits may need raising.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// HD1080Config returns 1080p at a reduced frame rate.
func HD1080Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	cfg.Framerate = 15
	return cfg
}

// FastConfig returns 320x240 at 60 FPS for quick loop response.
func FastConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 320
	cfg.Height = 240
	cfg.Framerate = 60
	return cfg
}
