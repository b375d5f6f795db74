package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// AppName names the configuration directory under $XDG_CONFIG_HOME.
const AppName = "ddc"

type Config struct {
	// Layout file with the destination tree.
	LayoutPath string

	// Directory walk
	Extensions []string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// HTTP server
	Port           string
	APIKey         string
	MaxUploadBytes int64
	JobTTL         time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

// DefaultLayoutPath is $XDG_CONFIG_HOME/ddc/config.yml.
func DefaultLayoutPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yml")
}

func Load() Config {
	cfg := Config{
		LayoutPath: envOr("DDC_CONFIG", DefaultLayoutPath()),

		Extensions: envList("DDC_EXTENSIONS", []string{".pdf"}),

		WorkerCount:  envInt("DDC_WORKERS", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		Port:           envOr("PORT", "8090"),
		APIKey:         os.Getenv("DDC_API_KEY"),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		JobTTL:         envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}
	cfg.Normalize()
	return cfg
}

// Normalize clamps invalid values back to defaults. Call it again after
// applying flag overrides.
func (c *Config) Normalize() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 100
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 52428800
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
	if c.Port == "" {
		c.Port = "8090"
	}
	c.Extensions = NormalizeExtensions(c.Extensions)
	if len(c.Extensions) == 0 {
		c.Extensions = []string{".pdf"}
	}
}

// Validate checks what every command needs.
func (c Config) Validate() error {
	if c.LayoutPath == "" {
		return fmt.Errorf("layout path is required (--config or DDC_CONFIG)")
	}
	return nil
}

// ValidateServer checks the additional settings of the HTTP server.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("DDC_API_KEY is required")
	}
	return nil
}

// NormalizeExtensions lowercases, adds the leading dot and drops
// duplicates: "PDF" and ".pdf" are the same extension.
func NormalizeExtensions(exts []string) []string {
	seen := make(map[string]bool, len(exts))
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == "." {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		return strings.Split(v, ",")
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
