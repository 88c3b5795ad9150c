// Package config gathers runtime settings from .env files and the
// environment. Command line flags override the loaded values.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the application settings
type Config struct {
	// LayerURL selects the target layer backend: "memory:<name>",
	// a .geojson path, postgres://... or redis://...
	LayerURL   string
	ProjectCRS string

	BandColor color.NRGBA
	BandWidth float32

	GeoIPDB  string
	CenterIP string

	PostgresDSN string
	RedisAddr   string
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		LayerURL:   "memory:rectangles",
		ProjectCRS: "EPSG:3857",
		BandColor:  color.NRGBA{R: 255, A: 255},
		BandWidth:  1,
		RedisAddr:  "localhost:6379",
	}
}

// LoadDotEnv loads .env from the working directory and from the user
// config directory. Missing files are ignored and existing environment
// variables win.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	if dir, err := os.UserConfigDir(); err == nil {
		_ = godotenv.Load(filepath.Join(dir, "rectdraw", ".env"))
	}
}

// Load returns Default overlaid with environment variables
func Load() (Config, error) {
	cfg := Default()

	if v := os.Getenv("RECTDRAW_LAYER"); v != "" {
		cfg.LayerURL = v
	}
	if v := os.Getenv("RECTDRAW_PROJECT_CRS"); v != "" {
		cfg.ProjectCRS = v
	}
	if v := os.Getenv("RECTDRAW_BAND_COLOR"); v != "" {
		c, err := ParseColor(v)
		if err != nil {
			return cfg, fmt.Errorf("RECTDRAW_BAND_COLOR: %w", err)
		}
		cfg.BandColor = c
	}
	if v := os.Getenv("RECTDRAW_BAND_WIDTH"); v != "" {
		w, err := strconv.ParseFloat(v, 32)
		if err != nil || w <= 0 {
			return cfg, fmt.Errorf("RECTDRAW_BAND_WIDTH: invalid width %q", v)
		}
		cfg.BandWidth = float32(w)
	}
	cfg.GeoIPDB = os.Getenv("RECTDRAW_GEOIP_DB")
	cfg.CenterIP = os.Getenv("RECTDRAW_CENTER_IP")
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	cfg.PostgresDSN = BuildPostgresDSNFromEnv()

	return cfg, nil
}

// BuildPostgresDSNFromEnv assembles a DSN from the PG_* variables.
// It returns "" when PG_HOST is unset.
func BuildPostgresDSNFromEnv() string {
	host := os.Getenv("PG_HOST")
	if host == "" {
		return ""
	}
	port := envOr("PG_PORT", "5432")
	user := envOr("PG_USER", "postgres")
	db := envOr("PG_DB", "gis")
	ssl := envOr("PG_SSLMODE", "disable")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(user),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: url.Values{"sslmode": {ssl}}.Encode(),
	}
	if pass := os.Getenv("PG_PASSWORD"); pass != "" {
		u.User = url.UserPassword(user, pass)
	}
	return u.String()
}

// ParseColor accepts #rrggbb or #rrggbbaa and a few color names
func ParseColor(s string) (color.NRGBA, error) {
	switch strings.ToLower(s) {
	case "red":
		return color.NRGBA{R: 255, A: 255}, nil
	case "green":
		return color.NRGBA{G: 255, A: 255}, nil
	case "blue":
		return color.NRGBA{B: 255, A: 255}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ErrNoPostgres is returned for postgis: layers when PG_HOST is unset
var ErrNoPostgres = errors.New("postgis layer needs PG_HOST")

// ResolveLayerURL expands the "postgis:<table>" shorthand into a full
// postgres URL built from the PG_* settings. Other URLs are returned as is.
func (c Config) ResolveLayerURL() (string, error) {
	table, ok := strings.CutPrefix(c.LayerURL, "postgis:")
	if !ok {
		return c.LayerURL, nil
	}
	if c.PostgresDSN == "" {
		return "", ErrNoPostgres
	}
	sep := "?"
	if strings.Contains(c.PostgresDSN, "?") {
		sep = "&"
	}
	return c.PostgresDSN + sep + "table=" + url.QueryEscape(table), nil
}
