package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Response modes
const (
	ResponseWrapped = "wrapped"
	ResponseStatus  = "status"
)

// Writeback modes
const (
	WritebackInline = "inline"
	WritebackQueue  = "queue"
)

const (
	defaultSite            = "es"
	defaultSites           = "es,en"
	defaultUpstreamTimeout = 30 * time.Second
	defaultReservationsTTL = 90 * 24 * time.Hour
)

// Site holds the storefront credentials for one locale.
type Site struct {
	Name               string
	WooEndpoint        string
	WooAPIKey          string
	WooAPISecret       string
	ReservationsAPIURL string
}

// Config is built once at process start.
type Config struct {
	DefaultSite string
	Sites       map[string]Site

	// Reservation API
	ReservationsAuthURL  string
	ReservationsUsername string
	ReservationsPassword string
	ReservationsStore    string

	UpstreamTimeout     time.Duration
	RequirePaymentEvent bool
	ResponseMode        string

	WritebackMode     string
	WritebackQueueURL string

	// DynamoDB ledger; empty disables it
	ReservationsTable string
	ReservationsTTL   time.Duration

	// CloudWatch namespace; empty disables metrics
	MetricsNamespace string

	LogLevel string
	RunLocal bool
	Port     string
}

// Load reads the environment (and a .env file when present) into a Config.
func Load() (*Config, error) {
	// a missing .env is normal outside local runs
	_ = godotenv.Load()

	cfg := &Config{
		DefaultSite:          strings.ToLower(getEnv("DEFAULT_SITE", defaultSite)),
		Sites:                map[string]Site{},
		ReservationsAuthURL:  getEnv("RESV_API_AUTH", ""),
		ReservationsUsername: getEnv("RESV_API_USERNAME", ""),
		ReservationsPassword: getEnv("RESV_API_PASSWORD", ""),
		ReservationsStore:    getEnv("RESV_API_STORE", ""),
		UpstreamTimeout:      getDuration("UPSTREAM_TIMEOUT", defaultUpstreamTimeout),
		RequirePaymentEvent:  getBool("REQUIRE_PAYMENT_EVENT", true),
		ResponseMode:         strings.ToLower(getEnv("RESPONSE_MODE", ResponseWrapped)),
		WritebackMode:        strings.ToLower(getEnv("WRITEBACK_MODE", WritebackInline)),
		WritebackQueueURL:    getEnv("WRITEBACK_QUEUE_URL", ""),
		ReservationsTable:    getEnv("RESERVATIONS_TABLE", ""),
		ReservationsTTL:      getDuration("RESERVATIONS_TTL", defaultReservationsTTL),
		MetricsNamespace:     getEnv("METRICS_NAMESPACE", ""),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		RunLocal:             getBool("RUN_LOCAL", false),
		Port:                 getEnv("PORT", "8080"),
	}

	defaultResv := getEnv("RESV_API_ENDPOINT", "")
	for _, name := range strings.Split(getEnv("SITES", defaultSites), ",") {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		suffix := strings.ToUpper(name)
		cfg.Sites[name] = Site{
			Name:               name,
			WooEndpoint:        strings.TrimRight(getEnv("WOOCOMMERCE_ENDPOINT_"+suffix, ""), "/"),
			WooAPIKey:          getEnv("WOOCOMMERCE_API_KEY_"+suffix, ""),
			WooAPISecret:       getEnv("WOOCOMMERCE_API_SECRET_"+suffix, ""),
			ReservationsAPIURL: getEnv("RESV_API_ENDPOINT_"+suffix, defaultResv),
		}
	}

	return cfg, nil
}

// Validate reports every missing or unknown setting at once.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Sites) == 0 {
		errs = append(errs, errors.New("SITES is empty"))
	}
	if _, ok := c.Sites[c.DefaultSite]; !ok {
		errs = append(errs, fmt.Errorf("DEFAULT_SITE %q is not listed in SITES", c.DefaultSite))
	}
	for _, name := range c.SiteNames() {
		s := c.Sites[name]
		suffix := strings.ToUpper(name)
		if s.WooEndpoint == "" {
			errs = append(errs, fmt.Errorf("WOOCOMMERCE_ENDPOINT_%s is required", suffix))
		}
		if s.WooAPIKey == "" || s.WooAPISecret == "" {
			errs = append(errs, fmt.Errorf("WOOCOMMERCE_API_KEY_%s and WOOCOMMERCE_API_SECRET_%s are required", suffix, suffix))
		}
		if s.ReservationsAPIURL == "" {
			errs = append(errs, fmt.Errorf("RESV_API_ENDPOINT or RESV_API_ENDPOINT_%s is required", suffix))
		}
	}
	switch c.ResponseMode {
	case ResponseWrapped, ResponseStatus:
	default:
		errs = append(errs, fmt.Errorf("unknown RESPONSE_MODE %q", c.ResponseMode))
	}
	switch c.WritebackMode {
	case WritebackInline:
	case WritebackQueue:
		if c.WritebackQueueURL == "" {
			errs = append(errs, errors.New("WRITEBACK_QUEUE_URL is required when WRITEBACK_MODE=queue"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown WRITEBACK_MODE %q", c.WritebackMode))
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// SiteNames returns the configured locales in a stable order, default first.
func (c *Config) SiteNames() []string {
	names := make([]string, 0, len(c.Sites))
	if _, ok := c.Sites[c.DefaultSite]; ok {
		names = append(names, c.DefaultSite)
	}
	for _, name := range sortedKeys(c.Sites) {
		if name != c.DefaultSite {
			names = append(names, name)
		}
	}
	return names
}

// Site looks up a locale. The lookup is case-insensitive.
func (c *Config) Site(name string) (Site, bool) {
	s, ok := c.Sites[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getDuration accepts Go durations ("45s") or a plain number of seconds.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func sortedKeys(m map[string]Site) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
