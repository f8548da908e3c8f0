// internal/infra/config/config.go
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the environment configuration for the whole service.
type Config struct {
	Port string

	// Shopify
	StoreDomain          string // e.g. "grano-foods.myshopify.com"
	APIVersion           string
	StorefrontToken      string
	AdminToken           string // plain token; takes priority over the secret name
	AdminTokenSecretName string // Secret Manager resource name for the admin token

	// OTP vendor
	OTPBaseURL        string
	OTPAPIKey         string
	OTPKeySecretName  string

	// GCP
	GCPProjectID             string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string
	GCSBucket                string

	// Postgres (used when CARTLINK_BACKEND=pg)
	CartLinkBackend string // "firestore" (default) or "pg"
	PGHost          string
	PGPort          string
	PGUser          string
	PGPassword      string
	PGDatabase      string

	// Storefront site
	SiteBaseURL    string // public storefront URL, used for sitemap entries
	AllowedOrigin  string // CORS origin for browser calls
	MailFrom       string
	SendGridAPIKey string
}

// Load reads the environment (and .env if present) and returns a Config.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	defaultProject := os.Getenv("GCP_PROJECT_ID")

	cfg := &Config{
		Port: getenvDefault("PORT", "8080"),

		StoreDomain:          os.Getenv("SHOPIFY_STORE_DOMAIN"),
		APIVersion:           getenvDefault("SHOPIFY_API_VERSION", "2024-10"),
		StorefrontToken:      os.Getenv("SHOPIFY_STOREFRONT_TOKEN"),
		AdminToken:           os.Getenv("SHOPIFY_ADMIN_TOKEN"),
		AdminTokenSecretName: os.Getenv("SHOPIFY_ADMIN_TOKEN_SECRET"),

		OTPBaseURL:       os.Getenv("OTP_BASE_URL"),
		OTPAPIKey:        os.Getenv("OTP_API_KEY"),
		OTPKeySecretName: os.Getenv("OTP_API_KEY_SECRET"),

		GCPProjectID:             defaultProject,
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),
		GCSBucket:                os.Getenv("GCS_BUCKET"),

		CartLinkBackend: getenvDefault("CARTLINK_BACKEND", "firestore"),
		PGHost:          os.Getenv("PG_HOST"),
		PGPort:          getenvDefault("PG_PORT", "5432"),
		PGUser:          os.Getenv("PG_USER"),
		PGPassword:      os.Getenv("PG_PASSWORD"),
		PGDatabase:      os.Getenv("PG_DATABASE"),

		SiteBaseURL:    os.Getenv("SITE_BASE_URL"),
		AllowedOrigin:  os.Getenv("ALLOWED_ORIGIN"),
		MailFrom:       os.Getenv("MAIL_FROM"),
		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
	}

	return cfg
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
