package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

var (
	ErrMissingAPIKey        = errors.New("CONTENTSTACK_API_KEY is required")
	ErrMissingDeliveryToken = errors.New("CONTENTSTACK_DELIVERY_TOKEN is required")
	ErrMissingEnvironment   = errors.New("CONTENTSTACK_ENVIRONMENT is required")
	ErrInvalidRegion        = errors.New("CONTENTSTACK_REGION must be one of: us, eu, azure-na, azure-eu")
)

var (
	// Entry store
	APIKey        = ""
	DeliveryToken = ""
	Environment   = ""
	Region        = "eu"
	DeliveryHost  = ""

	// Personalization
	PersonalizeProjectUID = ""
	PersonalizeEdgeAPIURL = "https://personalize-edge.contentstack.com"
	PersonalizeDebug      = true
	PersonalizeInProcess  = false

	// Server
	AppURL         = "http://localhost:8080"
	OriginURL      = "http://localhost:8080"
	ListenAddr     = ":8080"
	EdgeListenAddr = ":8000"
	Production     = false
	LogLevel       = "info"
	SessionSecret  = ""
	WebhookSecret  = ""
	SiteConfigPath = ""
	AdminUsers     []string

	// Timeouts
	StoreTimeout       = 5 * time.Second
	PersonalizeTimeout = 2 * time.Second
	RequestTimeout     = 10 * time.Second

	// Cache settings
	PageCacheTTL        = 60 * time.Second
	PageCacheMaxEntries = 1000

	Site = DefaultSite()
)

var OauthConf *oauth2.Config

// regionHosts maps a delivery region to its CDN host.
var regionHosts = map[string]string{
	"us":       "https://cdn.contentstack.io",
	"eu":       "https://eu-cdn.contentstack.com",
	"azure-na": "https://azure-na-cdn.contentstack.com",
	"azure-eu": "https://azure-eu-cdn.contentstack.com",
}

func Init() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found or error loading it.")
	}

	// Helper to get env with default
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getDuration := func(key string, fallback time.Duration, unit time.Duration) time.Duration {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return time.Duration(n) * unit
			}
		}
		return fallback
	}
	getInt := func(key string, fallback int) int {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
		return fallback
	}
	getBool := func(key string, fallback bool) bool {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
		}
		return fallback
	}

	APIKey = os.Getenv("CONTENTSTACK_API_KEY")
	DeliveryToken = os.Getenv("CONTENTSTACK_DELIVERY_TOKEN")
	Environment = os.Getenv("CONTENTSTACK_ENVIRONMENT")
	Region = strings.ToLower(getEnv("CONTENTSTACK_REGION", "eu"))
	DeliveryHost = getEnv("CONTENTSTACK_DELIVERY_HOST", "")

	PersonalizeProjectUID = getEnv("PERSONALIZE_PROJECT_UID", os.Getenv("NEXT_PUBLIC_PERSONALIZE_PROJECT_UID"))
	PersonalizeEdgeAPIURL = getEnv("PERSONALIZE_EDGE_API_URL", PersonalizeEdgeAPIURL)
	PersonalizeDebug = getBool("PERSONALIZE_DEBUG_HEADERS", true)
	PersonalizeInProcess = getBool("PERSONALIZE_IN_PROCESS", false)

	AppURL = getEnv("APP_URL", "http://localhost:8080")
	OriginURL = getEnv("ORIGIN_URL", AppURL)
	ListenAddr = getEnv("LISTEN_ADDR", ":8080")
	EdgeListenAddr = getEnv("EDGE_LISTEN_ADDR", ":8000")
	Production = getEnv("APP_ENV", "development") == "production"
	LogLevel = getEnv("LOG_LEVEL", "info")
	SessionSecret = getEnv("SESSION_SECRET", "")
	WebhookSecret = getEnv("CONTENTSTACK_WEBHOOK_SECRET", "")
	SiteConfigPath = getEnv("SITE_CONFIG", "")
	AdminUsers = nil
	for _, u := range strings.Split(os.Getenv("ADMIN_USERS"), ",") {
		if u = strings.TrimSpace(u); u != "" {
			AdminUsers = append(AdminUsers, u)
		}
	}

	StoreTimeout = getDuration("STORE_TIMEOUT_MS", 5*time.Second, time.Millisecond)
	PersonalizeTimeout = getDuration("PERSONALIZE_TIMEOUT_MS", 2*time.Second, time.Millisecond)
	RequestTimeout = getDuration("REQUEST_TIMEOUT_MS", 10*time.Second, time.Millisecond)
	PageCacheTTL = getDuration("PAGE_CACHE_TTL_SEC", 60*time.Second, time.Second)
	PageCacheMaxEntries = getInt("PAGE_CACHE_MAX_ENTRIES", 1000)

	if SiteConfigPath != "" {
		site, err := LoadSite(SiteConfigPath)
		if err != nil {
			fmt.Printf("Failed to load site config %s: %v\n", SiteConfigPath, err)
		} else {
			Site = site
		}
	}

	OauthConf = &oauth2.Config{
		ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		Scopes:       []string{"read:user"},
		Endpoint:     github.Endpoint,
		RedirectURL:  getEnv("GITHUB_REDIRECT_URL", AppURL+"/auth/callback"),
	}
}

// Validate checks that the entry store can be reached with the loaded settings.
func Validate() error {
	if APIKey == "" {
		return ErrMissingAPIKey
	}
	if DeliveryToken == "" {
		return ErrMissingDeliveryToken
	}
	if Environment == "" {
		return ErrMissingEnvironment
	}
	if _, ok := regionHosts[Region]; !ok && DeliveryHost == "" {
		return ErrInvalidRegion
	}
	return nil
}

// StoreHost returns the delivery API base URL, preferring an explicit override.
func StoreHost() string {
	if DeliveryHost != "" {
		return strings.TrimRight(DeliveryHost, "/")
	}
	if h, ok := regionHosts[Region]; ok {
		return h
	}
	return regionHosts["eu"]
}
