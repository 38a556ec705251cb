package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	MongoURI             string
	MongoDatabase        string
	StagingCollection    string
	ProductionCollection string

	GeminiAPIKey    string
	GeminiModel     string
	TranslateTarget string

	ImageUploader   string
	UploadURL       string
	UploadJWTSecret string
	AWSRegion       string
	AWSBucketName   string
	StagingDir      string

	RequestRetries   int
	RetryDelay       time.Duration
	RequestTimeout   time.Duration
	RequestRPS       float64
	FetchFallbacks   string
	ChromeDriverPath string

	StorefrontsFile string
	PushgatewayURL  string
	SendGridAPIKey  string
	ReportEmail     string
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017/")
	MongoDatabase = getEnv("MONGO_DATABASE", "DB")
	StagingCollection = getEnv("MONGO_STAGING_COLLECTION", "tmp_Products")
	ProductionCollection = getEnv("MONGO_PRODUCTION_COLLECTION", "Products")

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	GeminiModel = getEnv("GEMINI_MODEL", "gemini-1.5-flash")
	TranslateTarget = getEnv("TRANSLATE_TARGET", "ru")

	ImageUploader = getEnv("IMAGE_UPLOADER", "http")
	UploadURL = getEnv("UPLOAD_URL", "https://83.147.245.51:5000")
	UploadJWTSecret = os.Getenv("UPLOAD_JWT_SECRET")
	AWSRegion = getEnv("AWS_REGION", "eu-central-1")
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")
	StagingDir = getEnv("STAGING_DIR", "photo")

	RequestRetries = getEnvInt("REQUEST_RETRIES", 2)
	RetryDelay = getEnvDuration("RETRY_DELAY", time.Second)
	RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	RequestRPS = getEnvFloat("REQUEST_RPS", 0)
	FetchFallbacks = os.Getenv("FETCH_FALLBACKS")
	ChromeDriverPath = getEnv("CHROMEDRIVER_PATH", "/usr/local/bin/chromedriver")

	StorefrontsFile = os.Getenv("STOREFRONTS_FILE")
	PushgatewayURL = os.Getenv("PUSHGATEWAY_URL")
	SendGridAPIKey = os.Getenv("SENDGRID_API_KEY")
	ReportEmail = os.Getenv("REPORT_EMAIL")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return d
}
