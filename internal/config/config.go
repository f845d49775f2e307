package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"Yatra-App/internal/logger"
)

// POIバックエンドの種類
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

// Config は環境変数から読み込むアプリケーション設定
type Config struct {
	Port string

	POIBackend         string
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseDBPassword string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	POICacheTTL   time.Duration

	FirestoreProjectID  string
	TourSessionTTLHours int
	TourInterval        time.Duration

	GeminiAPIKey string

	LogLevel string
}

// Load は.envファイル（存在すれば）と環境変数から設定を読み込む
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.L().Warn("⚠️  .env file not found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv は環境変数のみから設定を組み立てて検証する
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		POIBackend:         getEnv("POI_BACKEND", BackendSupabase),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseDBPassword: os.Getenv("SUPABASE_DB_PASSWORD"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		LogLevel:           os.Getenv("LOGLEVEL"),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	cacheTTL, err := getEnvInt("POI_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	cfg.POICacheTTL = time.Duration(cacheTTL) * time.Second

	intervalSeconds, err := getEnvInt("TOUR_INTERVAL_SECONDS", 7)
	if err != nil {
		return nil, err
	}
	cfg.TourInterval = time.Duration(intervalSeconds) * time.Second

	if cfg.TourSessionTTLHours, err = getEnvInt("TOUR_SESSION_TTL_HOURS", 2); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は必須項目と値の範囲をチェックする
func (c *Config) Validate() error {
	switch c.POIBackend {
	case BackendSupabase:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return fmt.Errorf("SUPABASE_URLとSUPABASE_ANON_KEY環境変数が必要です")
		}
	case BackendPostgres:
		if c.SupabaseURL == "" || c.SupabaseDBPassword == "" {
			return fmt.Errorf("SUPABASE_URLとSUPABASE_DB_PASSWORD環境変数が必要です")
		}
	default:
		return fmt.Errorf("POI_BACKENDは'%s'または'%s'を指定してください: %s", BackendSupabase, BackendPostgres, c.POIBackend)
	}

	if c.TourInterval <= 0 {
		return fmt.Errorf("TOUR_INTERVAL_SECONDSは正の整数で指定してください")
	}
	if c.TourSessionTTLHours <= 0 {
		return fmt.Errorf("TOUR_SESSION_TTL_HOURSは正の整数で指定してください")
	}
	if c.POICacheTTL < 0 {
		return fmt.Errorf("POI_CACHE_TTL_SECONDSは0以上で指定してください")
	}
	return nil
}

// UseRedisCache はRedisキャッシュを利用するかどうか
func (c *Config) UseRedisCache() bool {
	return c.RedisAddr != "" && c.POICacheTTL > 0
}

// UseFirestore はツアーセッションをFirestoreに保存するかどうか
func (c *Config) UseFirestore() bool {
	return c.FirestoreProjectID != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s環境変数が整数ではありません: %w", key, err)
	}
	return n, nil
}
