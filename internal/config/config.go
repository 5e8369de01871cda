package config

import (
	"os"
	"strings"
)

type Mode string

const (
	// ModeOffline runs against the built-in in-memory backend.
	ModeOffline Mode = "offline"
	// ModeOnline forwards to a real generation service.
	ModeOnline Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	// BackendURL is the generation service base URL. In offline mode the
	// built-in backend is mounted under /_backend instead.
	BackendURL string

	AuthSecret string
	DevUser    string
	DevPass    string

	CORSOriginsOnline  []string
	CORSOriginsOffline []string
}

func FromEnv() Config {
	mode := Mode(os.Getenv("MODE"))
	if mode == "" {
		mode = ModeOffline
	}
	return Config{
		Mode:     mode,
		HTTPAddr: envOr("HTTP_ADDR", ":8080"),

		BackendURL: envOr("BACKEND_URL", "http://localhost:8000"),

		AuthSecret: envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		DevUser:    envOr("DEV_USER", "teacher"),
		DevPass:    envOr("DEV_PASS", "teacher"),

		CORSOriginsOnline:  csvOr("CORS_ORIGINS_ONLINE", "https://app.quizforge.dev"),
		CORSOriginsOffline: csvOr("CORS_ORIGINS_OFFLINE", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
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
