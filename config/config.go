package config

import (
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Socket   SocketConfig
	JWT      JWTConfig
	Monitor  MonitorConfig
}

type ServerConfig struct {
	Port string
}

type UpstreamConfig struct {
	BaseURL            string
	FeedURLTemplate    string
	HeatmapURLTemplate string
}

type SocketConfig struct {
	URL               string
	Reconnect         bool
	ReconnectDelaySec int
	SendBuffer        int
}

type JWTConfig struct {
	Secret string
}

type MonitorConfig struct {
	WindowSize     int
	SeriesLimit    int
	GuardsPerFifty int
	RateEpsilon    float64
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Upstream: UpstreamConfig{
			BaseURL:            getEnv("UPSTREAM_BASE_URL", "http://localhost:5050/api/v1"),
			FeedURLTemplate:    getEnv("FEED_URL_TEMPLATE", "http://localhost:5050/feeds/%s/index.m3u8"),
			HeatmapURLTemplate: getEnv("HEATMAP_URL_TEMPLATE", "http://localhost:5050/feeds/%s/heatmap.m3u8"),
		},
		Socket: SocketConfig{
			URL:               getEnv("SOCKET_URL", "ws://localhost:5050/socket"),
			Reconnect:         getEnvBool("SOCKET_RECONNECT", true),
			ReconnectDelaySec: getEnvInt("SOCKET_RECONNECT_DELAY", 2),
			SendBuffer:        getEnvInt("SOCKET_SEND_BUFFER", 64),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Monitor: MonitorConfig{
			WindowSize:     getEnvInt("MONITOR_WINDOW_SIZE", 5),
			SeriesLimit:    getEnvInt("MONITOR_SERIES_LIMIT", 10),
			GuardsPerFifty: getEnvInt("MONITOR_GUARDS_PER_FIFTY", 1),
			RateEpsilon:    getEnvFloat("MONITOR_RATE_EPSILON", 0.001),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
