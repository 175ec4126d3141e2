package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is read when present and no --config flag is given.
const DefaultFile = "facecam.yaml"

// Config holds everything the capture loop and subcommands need.
type Config struct {
	FacesDir     string  `yaml:"faces_dir"`
	ModelsDir    string  `yaml:"models_dir"`
	Camera       int     `yaml:"camera"`
	Backend      string  `yaml:"backend"`   // any, dshow, v4l2, avfoundation, msmf; empty picks per platform
	Threshold    float64 `yaml:"threshold"` // Euclidean distance, lower is stricter
	Downscale    int     `yaml:"downscale"` // Frames are shrunk by 1/Downscale before detection
	ProcessEvery int     `yaml:"every"`     // Run detection on every Nth frame
	WindowTitle  string  `yaml:"window"`
	QuitKey      string  `yaml:"quit_key"`
}

// Default returns the configuration the program runs with when nothing is set.
func Default() Config {
	return Config{
		FacesDir:     "faces",
		ModelsDir:    "models",
		Camera:       0,
		Threshold:    0.6,
		Downscale:    4,
		ProcessEvery: 2,
		WindowTitle:  "Face recognition",
		QuitKey:      "q",
	}
}

// Load builds a Config from defaults, an optional YAML file and FACECAM_* environment variables,
// in that order of precedence (later wins). An empty path means DefaultFile if it exists.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Optional file
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	envString("FACECAM_FACES_DIR", &cfg.FacesDir)
	envString("FACECAM_MODELS_DIR", &cfg.ModelsDir)
	envString("FACECAM_BACKEND", &cfg.Backend)
	envString("FACECAM_WINDOW", &cfg.WindowTitle)
	envString("FACECAM_QUIT_KEY", &cfg.QuitKey)

	if err := envInt("FACECAM_CAMERA", &cfg.Camera); err != nil {
		return err
	}
	if err := envInt("FACECAM_DOWNSCALE", &cfg.Downscale); err != nil {
		return err
	}
	if err := envInt("FACECAM_EVERY", &cfg.ProcessEvery); err != nil {
		return err
	}
	if s := os.Getenv("FACECAM_THRESHOLD"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid FACECAM_THRESHOLD %q: %w", s, err)
		}
		cfg.Threshold = v
	}
	return nil
}

func envString(key string, dst *string) {
	if s := os.Getenv(key); s != "" {
		*dst = s
	}
}

func envInt(key string, dst *int) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	*dst = n
	return nil
}

// Validate ensures all values are usable before any device is opened.
func (c *Config) Validate() error {
	if c.FacesDir == "" {
		return errors.New("faces directory must be set")
	}
	if c.ModelsDir == "" {
		return errors.New("models directory must be set")
	}
	if c.Camera < 0 {
		return fmt.Errorf("camera index must be >= 0, got %d", c.Camera)
	}
	if c.Threshold <= 0 || c.Threshold >= 1.0 {
		return fmt.Errorf("threshold must be greater than 0.0 and less than 1.0, got %f", c.Threshold)
	}
	if c.Downscale < 1 {
		return fmt.Errorf("downscale must be >= 1, got %d", c.Downscale)
	}
	if c.ProcessEvery < 1 {
		return fmt.Errorf("every must be >= 1, got %d", c.ProcessEvery)
	}
	if len(c.QuitKey) != 1 {
		return fmt.Errorf("quit key must be a single character, got %q", c.QuitKey)
	}
	if _, err := ResolveBackend(c.Backend, runtime.GOOS); err != nil {
		return err
	}
	return nil
}

// Backends accepted in the config, besides the empty platform default.
var Backends = []string{"any", "dshow", "v4l2", "avfoundation", "msmf"}

// ResolveBackend turns the configured backend into a concrete name.
// An empty value picks the native capture API of goos.
func ResolveBackend(name, goos string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		switch goos {
		case "windows":
			return "dshow", nil
		case "linux":
			return "v4l2", nil
		case "darwin":
			return "avfoundation", nil
		default:
			return "any", nil
		}
	}
	for _, b := range Backends {
		if b == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("unknown capture backend %q (want one of %s)", name, strings.Join(Backends, ", "))
}
