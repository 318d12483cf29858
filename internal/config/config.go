package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/cardvision/internal/system"
)

type Config struct {
	Addr          string           `yaml:"addr"`
	TemplatesDir  string           `yaml:"templates_dir"`
	Workers       int              `yaml:"workers"`
	MaxUploadMB   int              `yaml:"max_upload_mb"`
	DebugDir      string           `yaml:"debug_dir"`
	BuildVersion  string           `yaml:"-"`
	Segmenter     string           `yaml:"segmenter"`
	Preprocess    PreprocessConfig `yaml:"preprocess"`
	Segment       SegmentConfig    `yaml:"segment"`
	MatchBlurSize int              `yaml:"match_blur_size"`
}

// PreprocessConfig bounds the working resolution. Segmentation thresholds are
// tuned against this band.
type PreprocessConfig struct {
	MinDimension int `yaml:"min_dimension"`
	MaxDimension int `yaml:"max_dimension"`
}

type SegmentConfig struct {
	BlurSize      int     `yaml:"blur_size"`
	CannyLow      float64 `yaml:"canny_low"`
	CannyHigh     float64 `yaml:"canny_high"`
	EdgeDilate    int     `yaml:"edge_dilate"`
	ApproxEpsilon float64 `yaml:"approx_epsilon"` // fraction of the contour perimeter
	MinArea       float64 `yaml:"min_area"`
	MinAspect     float64 `yaml:"min_aspect"`
	MaxAspect     float64 `yaml:"max_aspect"`
}

func Default() *Config {
	return &Config{
		Addr:         ":8000",
		TemplatesDir: "PNG-cards",
		Workers:      system.WorkerCount(),
		MaxUploadMB:  50,
		Segmenter:    "contour",
		Preprocess: PreprocessConfig{
			MinDimension: 400,
			MaxDimension: 1500,
		},
		Segment:       DefaultSegment(),
		MatchBlurSize: 3,
	}
}

func DefaultSegment() SegmentConfig {
	return SegmentConfig{
		BlurSize:      5,
		CannyLow:      50,
		CannyHigh:     150,
		EdgeDilate:    1,
		ApproxEpsilon: 0.02,
		MinArea:       10000,
		MinAspect:     0.5,
		MaxAspect:     2.0,
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv loads .env (if present) and applies CARDVISION_* overrides.
func (c *Config) ApplyEnv() {
	_ = godotenv.Load()

	c.Addr = getEnv("CARDVISION_ADDR", c.Addr)
	c.TemplatesDir = getEnv("CARDVISION_TEMPLATES", c.TemplatesDir)
	c.DebugDir = getEnv("CARDVISION_DEBUG_DIR", c.DebugDir)
	c.Segmenter = getEnv("CARDVISION_SEGMENTER", c.Segmenter)
	c.Workers = atoiDef(os.Getenv("CARDVISION_WORKERS"), c.Workers)
	c.MaxUploadMB = atoiDef(os.Getenv("CARDVISION_MAX_UPLOAD_MB"), c.MaxUploadMB)
}

func (c *Config) Validate() error {
	p := c.Preprocess
	if p.MinDimension <= 0 || p.MaxDimension < p.MinDimension {
		return fmt.Errorf("invalid resolution band [%d, %d]", p.MinDimension, p.MaxDimension)
	}
	s := c.Segment
	if s.CannyLow < 0 || s.CannyHigh < s.CannyLow {
		return fmt.Errorf("invalid canny thresholds %.1f/%.1f", s.CannyLow, s.CannyHigh)
	}
	if s.MinAspect <= 0 || s.MaxAspect < s.MinAspect {
		return fmt.Errorf("invalid aspect band [%.2f, %.2f]", s.MinAspect, s.MaxAspect)
	}
	if s.ApproxEpsilon <= 0 {
		return fmt.Errorf("approx_epsilon must be positive")
	}
	if s.BlurSize < 1 || c.MatchBlurSize < 1 {
		return fmt.Errorf("blur sizes must be >= 1")
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
