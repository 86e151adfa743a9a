package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when no model credential is available.
var ErrMissingAPIKey = errors.New("google API key není nastaven. Nastavte proměnnou prostředí GOOGLE_API_KEY (nebo ji uložte do souboru .env) a spusťte aplikaci znovu")

var DefaultModelStems = []string{
	"gemini-2.5-flash-preview-05-20",
	"gemini-1.5-flash-latest",
	"gemini-1.5-pro-latest",
	"gemini-pro",
}

type Config struct {
	Port           string
	Env            string
	LogMode        string
	APIKey         string
	Fake           bool
	ModelStems     []string
	Generation     GenerationConfig
	IncludeSkipped bool
	PromptsFile    string
	Store          StoreConfig
	Report         ReportConfig
}

// GenerationConfig is the baseline sampling configuration for every model call.
type GenerationConfig struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

type StoreConfig struct {
	PostgresDSN string
	RedisAddr   string
	FilePath    string
	CacheSize   int
	TTL         time.Duration
}

type ReportConfig struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads .env (when present) and the process environment. The API key
// is only required outside fake mode; callers decide via Validate.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), ":8080")
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		port = ":" + port
	}
	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")

	return &Config{
		Port:           port,
		Env:            env,
		LogMode:        firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_MODE")), "dev"),
		APIKey:         firstNonEmpty(strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")), strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))),
		Fake:           parseBool(os.Getenv("BMC_FAKE_LLM"), false),
		ModelStems:     parseList(os.Getenv("BMC_MODEL_STEMS"), DefaultModelStems),
		Generation:     loadGenerationConfig(),
		IncludeSkipped: parseBool(os.Getenv("BMC_INCLUDE_SKIPPED"), false),
		PromptsFile:    strings.TrimSpace(os.Getenv("BMC_PROMPTS_FILE")),
		Store:          loadStoreConfig(),
		Report:         loadReportConfig(env),
	}, nil
}

// Validate reports fatal startup conditions.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if !c.Fake && strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

func loadGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     float32(parseFloat(os.Getenv("BMC_TEMPERATURE"), 0.7)),
		TopP:            float32(parseFloat(os.Getenv("BMC_TOP_P"), 0.95)),
		MaxOutputTokens: int32(parseInt(os.Getenv("BMC_MAX_OUTPUT_TOKENS"), 65536)),
	}
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		PostgresDSN: strings.TrimSpace(os.Getenv("SESSION_STORE_PG_DSN")),
		RedisAddr:   strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		FilePath:    strings.TrimSpace(os.Getenv("SESSION_STORE_PATH")),
		CacheSize:   parseInt(os.Getenv("SESSION_CACHE_SIZE"), 1024),
		TTL:         parseDuration(os.Getenv("SESSION_TTL"), 24*time.Hour),
	}
}

func loadReportConfig(env string) ReportConfig {
	endpoint := strings.TrimSpace(os.Getenv("REPORT_S3_ENDPOINT"))
	return ReportConfig{
		Enabled:   endpoint != "",
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_BUCKET")), "bmcnav-reports"),
		UseSSL:    resolveUseSSL(env),
	}
}

// CanUseS3 reports whether enough is configured to reach the object store.
func (c ReportConfig) CanUseS3() bool {
	return c.Enabled &&
		strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

func resolveUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	return parseBool(os.Getenv("REPORT_S3_USE_SSL"), true)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseBool(raw string, def bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func parseInt(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseFloat(raw string, def float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

func parseDuration(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseList(raw string, def []string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), def...)
	}
	return out
}
