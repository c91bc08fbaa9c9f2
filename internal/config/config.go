package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string

	// IframeOrigins is the host allow-list, used both for the message gate and
	// as the target list for outbound posts.
	IframeOrigins []string

	DisplaySize        int
	SubmitPolicy       string // manual|on_complete|both
	EmitProgressEvents bool
	ResultSigningKey   string

	DBDriver string // sqlite|postgres|none
	DBDSN    string

	RabbitMQURI      string
	RabbitMQExchange string

	SinkTimeout time.Duration
}

// FromEnv reads the environment. When CONFIG_FILE names a YAML file its keys
// (same names as the env vars) fill in whatever the environment leaves unset.
func FromEnv() (Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadOverlay(path); err != nil {
			return Config{}, err
		}
	}
	return Config{
		HTTPAddr:           envOr("HTTP_ADDR", ":8080"),
		IframeOrigins:      csvOr("IFRAME_ORIGIN", "http://localhost:3000"),
		DisplaySize:        envInt("DISPLAY_SIZE", 4),
		SubmitPolicy:       envOr("SUBMIT_POLICY", "manual"),
		EmitProgressEvents: envBool("EMIT_PROGRESS_EVENTS", false),
		ResultSigningKey:   os.Getenv("RESULT_SIGNING_KEY"),
		DBDriver:           envOr("DB_DRIVER", "sqlite"),
		DBDSN:              envOr("DB_DSN", ""),
		RabbitMQURI:        os.Getenv("RABBITMQ_URI"),
		RabbitMQExchange:   envOr("RABBITMQ_EXCHANGE", "matchgame.events"),
		SinkTimeout:        envDuration("SINK_TIMEOUT", 5*time.Second),
	}, nil
}

// loadOverlay sets env vars from a flat YAML map without overriding ones
// already present.
func loadOverlay(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var kv map[string]any
	if err := yaml.Unmarshal(raw, &kv); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	for k, v := range kv {
		k = strings.ToUpper(k)
		if _, set := os.LookupEnv(k); set {
			continue
		}
		var s string
		switch t := v.(type) {
		case []any:
			parts := make([]string, 0, len(t))
			for _, p := range t {
				parts = append(parts, fmt.Sprint(p))
			}
			s = strings.Join(parts, ",")
		default:
			s = fmt.Sprint(t)
		}
		if err := os.Setenv(k, s); err != nil {
			return err
		}
	}
	return nil
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
func envDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
