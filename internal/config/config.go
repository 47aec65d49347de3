package config

import (
	"os"
	"strconv"
)

type Config struct {
	// Server
	Port           string
	AllowedOrigins string
	Environment    string

	// Storage
	DatabasePath      string
	CatalogPath       string
	ModelArtifactPath string

	// Forecast pipeline
	WindowLength    int     // lookback W fed to the sequence model
	FeatureCount    int     // feature vector arity
	HistoryCapacity int     // in-memory ring buffer size
	UseLogScale     bool    // log1p the features before min-max scaling
	SlopeThreshold  float64 // regression slope beyond which a trend is called
	GuardThreshold  float64 // relative deviation that triggers the override
	TrendUpFactor   float64
	TrendDownFactor float64
	BaselineWeight  float64
	RecentWeight    float64
	MinimumQuantity int

	// S3/Garage archive for uploaded invoice images (optional)
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		DatabasePath:      getEnv("DATABASE_PATH", "data/invoices.db"),
		CatalogPath:       getEnv("CATALOG_PATH", "data/product_catalogs.json"),
		ModelArtifactPath: getEnv("MODEL_ARTIFACT_PATH", "saved_models/import_forecast.json"),
		WindowLength:      getIntEnv("FORECAST_WINDOW", 10),
		FeatureCount:      getIntEnv("FORECAST_FEATURES", 5),
		HistoryCapacity:   getIntEnv("HISTORY_CAPACITY", 300),
		UseLogScale:       getBoolEnv("FORECAST_LOG_SCALE", false),
		SlopeThreshold:    getFloatEnv("TREND_SLOPE_THRESHOLD", 10),
		GuardThreshold:    getFloatEnv("GUARD_ERROR_RATIO", 0.5),
		TrendUpFactor:     getFloatEnv("GUARD_TREND_UP_FACTOR", 1.15),
		TrendDownFactor:   getFloatEnv("GUARD_TREND_DOWN_FACTOR", 0.85),
		BaselineWeight:    getFloatEnv("GUARD_BASELINE_WEIGHT", 0.7),
		RecentWeight:      getFloatEnv("GUARD_RECENT_WEIGHT", 0.3),
		MinimumQuantity:   getIntEnv("GUARD_MINIMUM_QUANTITY", 10),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:       getEnv("S3_SECRET_KEY", ""),
		S3Bucket:          getEnv("S3_BUCKET", "invoices"),
		S3Region:          getEnv("S3_REGION", "garage"),
		S3UseSSL:          getBoolEnv("S3_USE_SSL", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
