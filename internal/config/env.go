package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type EnvConfig struct {
	ConfigPath  string
	FeedURL     string
	LogLevel    string
	MetricsAddr string
	HTTP        HTTPEnvConfig
	OTel        OTelEnvConfig
}

type HTTPEnvConfig struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

type OTelEnvConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Protocol    string // "grpc" or "http/protobuf"
	Headers     map[string]string
	Insecure    bool
	SampleRatio float64
}

func LoadEnv() EnvConfig {
	otlpEndpoint := envString("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	return EnvConfig{
		ConfigPath:  envString("FEEDLOADER_CONFIG", "feedloader.yaml"),
		FeedURL:     envString("FEED_URL", ""),
		LogLevel:    strings.ToLower(envString("LOG_LEVEL", "info")),
		MetricsAddr: envString("METRICS_ADDR", ""),
		HTTP: HTTPEnvConfig{
			Timeout:      envDuration("FEED_HTTP_TIMEOUT", 10*time.Second),
			UserAgent:    envString("FEED_USER_AGENT", "feedloader/0.1"),
			MaxBodyBytes: int64(envInt("FEED_MAX_BODY_BYTES", 10<<20)),
		},
		OTel: OTelEnvConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			ServiceName: envString("OTEL_SERVICE_NAME", "feedloader"),
			Endpoint:    otlpEndpoint,
			Protocol:    strings.ToLower(envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			Headers:     parseHeaders(envString("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", defaultInsecure(otlpEndpoint)),
			SampleRatio: clamp01(envFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0)),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return fallback
	}
	return i
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// parseHeaders reads "k1=v1,k2=v2" as used by OTEL_EXPORTER_OTLP_HEADERS.
func parseHeaders(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(part, "=")
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if !ok || k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// defaultInsecure is true for plain-http and loopback collector endpoints.
func defaultInsecure(endpoint string) bool {
	if endpoint == "" {
		return true
	}
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		return err == nil && u.Scheme == "http"
	}
	for _, prefix := range []string{"localhost:", "127.0.0.1:", "0.0.0.0:"} {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}
