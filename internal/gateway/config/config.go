package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	Env     string
	LogJSON bool

	Analysis AnalysisConfig
	Upload   UploadConfig
	Store    StoreConfig
	Render   RenderConfig
}

type AnalysisConfig struct {
	BackendURL    string
	APIKey        string
	Timeout       time.Duration
	RatePerMinute int
	CacheTTL      time.Duration
}

type UploadConfig struct {
	MaxBytes int64
}

type StoreConfig struct {
	Slot  string
	Kind  string
	Path  string
	PgDSN string
	S3    S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

type RenderConfig struct {
	LayoutFile string
	CacheSize  int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port := flag.String("port", ":8081", "server port")
	flag.Parse()

	return FromEnv(*port), nil
}

// FromEnv reads everything but the port flag from the environment; PORT
// overrides defaultPort.
func FromEnv(defaultPort string) *Config {
	port := defaultPort
	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			port = envPort
		} else {
			port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:    port,
		Env:     env,
		LogJSON: parseBool(os.Getenv("LOG_JSON"), !strings.EqualFold(env, "local")),
		Analysis: AnalysisConfig{
			BackendURL:    firstNonEmpty(strings.TrimSpace(os.Getenv("BACKEND_API_URL")), "http://localhost:8080"),
			APIKey:        strings.TrimSpace(os.Getenv("BACKEND_API_KEY")),
			Timeout:       parseDuration(os.Getenv("ANALYZE_TIMEOUT"), 30*time.Second),
			RatePerMinute: parseInt(os.Getenv("ANALYZE_RATE_PER_MIN"), 30),
			CacheTTL:      parseDuration(os.Getenv("ANALYZE_CACHE_TTL"), 10*time.Minute),
		},
		Upload: UploadConfig{
			MaxBytes: int64(parseInt(os.Getenv("MAX_UPLOAD_BYTES"), 5<<20)),
		},
		Store: loadStoreConfig(env),
		Render: RenderConfig{
			LayoutFile: strings.TrimSpace(os.Getenv("RENDER_LAYOUT_FILE")),
			CacheSize:  parseInt(os.Getenv("RENDER_CACHE_SIZE"), 256),
		},
	}
}

func loadStoreConfig(env string) StoreConfig {
	return StoreConfig{
		Slot:  firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_SLOT")), "projectData"),
		Kind:  strings.ToLower(strings.TrimSpace(os.Getenv("REPORT_STORE"))),
		Path:  strings.TrimSpace(os.Getenv("REPORT_STORE_PATH")),
		PgDSN: strings.TrimSpace(os.Getenv("REPORT_STORE_PG_DSN")),
		S3: S3Config{
			Endpoint:  strings.TrimSpace(os.Getenv("REPORT_S3_ENDPOINT")),
			Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_REGION")), "us-east-1"),
			AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
			SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
			Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_BUCKET")), "codelens-reports"),
			Prefix:    strings.TrimSpace(os.Getenv("REPORT_S3_PREFIX")),
			UseSSL:    resolveS3UseSSL(env),
		},
	}
}

func resolveS3UseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	return parseBool(os.Getenv("REPORT_S3_USE_SSL"), true)
}

func parseBool(raw string, fallback bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func parseInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// parseDuration accepts Go durations ("45s") or a plain number of seconds.
func parseDuration(raw string, fallback time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
