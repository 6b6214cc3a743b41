package config

import (
	"os"
	"strconv"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

// Scheduling holds the humanization knobs for the posting scheduler:
// per-platform daily caps, minimum spacing between posts, and the jitter
// window applied to "post now" requests.
type Scheduling struct {
	DailyLimits     map[string]int
	MinSpacing      map[string]time.Duration
	MinDelayMinutes int
	MaxDelayMinutes int
	VarianceMinutes int
	QueueAttempts   int
	RetryBase       time.Duration
}

type Config struct {
	InstagramClientID     string
	InstagramClientSecret string
	InstagramRedirectURI  string
	TiktokClientKey       string
	TiktokClientSecret    string
	TiktokRedirectURI     string
	GoogleClientID        string
	GoogleClientSecret    string
	GoogleRedirectURI     string
	FacebookAppID         string
	FacebookAppSecret     string
	PostgresURI           string
	RedisURI              string
	FrontendURL           string
	R2                    R2
	Scheduling            Scheduling
	SecretKey             string
	CookieName            string
}

func LoadConfig() *Config {
	return &Config{
		InstagramClientID:     getEnv("INSTAGRAM_CLIENT_ID", ""),
		InstagramClientSecret: getEnv("INSTAGRAM_CLIENT_SECRET", ""),
		InstagramRedirectURI:  getEnv("INSTAGRAM_REDIRECT_URI", ""),
		TiktokClientKey:       getEnv("TIKTOK_CLIENT_KEY", ""),
		TiktokClientSecret:    getEnv("TIKTOK_CLIENT_SECRET", ""),
		TiktokRedirectURI:     getEnv("TIKTOK_REDIRECT_URI", ""),
		GoogleClientID:        getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:    getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:     getEnv("GOOGLE_REDIRECT_URI", ""),
		FacebookAppID:         getEnv("FACEBOOK_APP_ID", ""),
		FacebookAppSecret:     getEnv("FACEBOOK_APP_SECRET", ""),
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		Scheduling: Scheduling{
			DailyLimits: map[string]int{
				"youtube":   getEnvInt("YOUTUBE_DAILY_LIMIT", 5),
				"tiktok":    getEnvInt("TIKTOK_DAILY_LIMIT", 2),
				"instagram": getEnvInt("INSTAGRAM_DAILY_LIMIT", 3),
				"facebook":  getEnvInt("FACEBOOK_DAILY_LIMIT", 4),
			},
			MinSpacing: map[string]time.Duration{
				"youtube":   time.Duration(getEnvInt("YOUTUBE_MIN_SPACING_MINUTES", 120)) * time.Minute,
				"tiktok":    time.Duration(getEnvInt("TIKTOK_MIN_SPACING_MINUTES", 240)) * time.Minute,
				"instagram": time.Duration(getEnvInt("INSTAGRAM_MIN_SPACING_MINUTES", 180)) * time.Minute,
				"facebook":  time.Duration(getEnvInt("FACEBOOK_MIN_SPACING_MINUTES", 180)) * time.Minute,
			},
			MinDelayMinutes: getEnvInt("MIN_DELAY_MINUTES", 5),
			MaxDelayMinutes: getEnvInt("MAX_DELAY_MINUTES", 15),
			VarianceMinutes: getEnvInt("VARIANCE_MINUTES", 30),
			QueueAttempts:   getEnvInt("QUEUE_ATTEMPTS", 3),
			RetryBase:       time.Duration(getEnvInt("RETRY_BASE_SECONDS", 60)) * time.Second,
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "shortloop_session"),
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
