package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile              = ".env"
	defaultPort                 = "8080"
	defaultReadTimeout          = 15 * time.Second
	defaultWriteTimeout         = 30 * time.Second
	defaultIdleTimeout          = 120 * time.Second
	defaultEnvironment          = "local"
	defaultStoreBackend         = StoreBackendFirestore
	defaultTimePolicy           = "linear"
	defaultVariationBand        = 0.10
	defaultMinCost              = 50
	defaultCurrency             = "XAF"
	defaultLocale               = "fr-CM"
	defaultSessionTTL           = 30 * time.Minute
	defaultEstimatesPerMinute   = 120
	defaultMealPlanMaxEntries   = 14
	defaultMealPlanConcurrency  = 4
	defaultIdempotencyHeader    = "Idempotency-Key"
	defaultIdempotencyTTL       = 24 * time.Hour
	defaultIdempotencyInterval  = time.Hour
	defaultIdempotencyBatchSize = 200
)

// Store backends.
const (
	StoreBackendFirestore = "firestore"
	StoreBackendMemory    = "memory"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Server      ServerConfig
	Firebase    FirebaseConfig
	Firestore   FirestoreConfig
	Store       StoreConfig
	Estimator   EstimatorConfig
	RateLimits  RateLimitConfig
	MealPlan    MealPlanConfig
	Idempotency IdempotencyConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// FirebaseConfig stores Firebase project settings. Authenticated routes are only mounted when a
// project is configured.
type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
	// CheckRevoked makes every verification consult Firebase for revoked sessions.
	CheckRevoked bool
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	EmulatorHost string
}

// StoreConfig selects where recipes, experiences and personal recipes live.
type StoreConfig struct {
	Backend  string
	SeedFile string
}

// EstimatorConfig tunes cost and time estimation.
type EstimatorConfig struct {
	PriceTableFile string
	TimePolicy     string
	VariationBand  float64
	MinCost        float64
	OverheadRate   float64
	Currency       string
	Locale         string
	SessionTTL     time.Duration
}

// RateLimitConfig controls request throttling. Zero disables the limiter.
type RateLimitConfig struct {
	EstimatesPerMinute int
}

// MealPlanConfig bounds meal plan requests.
type MealPlanConfig struct {
	MaxEntries  int
	Concurrency int
}

// IdempotencyConfig controls idempotency middleware behaviour.
type IdempotencyConfig struct {
	Header           string
	TTL              time.Duration
	CleanupInterval  time.Duration
	CleanupBatchSize int
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.Getenv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the application configuration by combining defaults, .env overrides and
// environment variables.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}

	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	cfg := Config{
		Environment: strings.ToLower(stringWithDefault(lookup, "HOMECHEF_ENVIRONMENT", defaultEnvironment)),
		Server: ServerConfig{
			Port:         stringWithDefault(lookup, "HOMECHEF_SERVER_PORT", defaultPort),
			ReadTimeout:  durationWithDefault(lookup, "HOMECHEF_SERVER_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationWithDefault(lookup, "HOMECHEF_SERVER_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationWithDefault(lookup, "HOMECHEF_SERVER_IDLE_TIMEOUT", defaultIdleTimeout),
		},
		Firebase: FirebaseConfig{
			ProjectID:       stringWithDefault(lookup, "HOMECHEF_FIREBASE_PROJECT_ID", ""),
			CredentialsFile: stringWithDefault(lookup, "HOMECHEF_FIREBASE_CREDENTIALS_FILE", ""),
			CheckRevoked:    boolWithDefault(lookup, "HOMECHEF_FIREBASE_CHECK_REVOKED", false),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "HOMECHEF_FIRESTORE_PROJECT_ID", ""),
			EmulatorHost: stringWithDefault(lookup, "HOMECHEF_FIRESTORE_EMULATOR_HOST", ""),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(stringWithDefault(lookup, "HOMECHEF_STORE_BACKEND", defaultStoreBackend)),
			SeedFile: stringWithDefault(lookup, "HOMECHEF_STORE_SEED_FILE", ""),
		},
		Estimator: EstimatorConfig{
			PriceTableFile: stringWithDefault(lookup, "HOMECHEF_ESTIMATOR_PRICE_TABLE_FILE", ""),
			TimePolicy:     strings.ToLower(stringWithDefault(lookup, "HOMECHEF_ESTIMATOR_TIME_POLICY", defaultTimePolicy)),
			VariationBand:  floatWithDefault(lookup, "HOMECHEF_ESTIMATOR_VARIATION_BAND", defaultVariationBand),
			MinCost:        floatWithDefault(lookup, "HOMECHEF_ESTIMATOR_MIN_COST", defaultMinCost),
			OverheadRate:   floatWithDefault(lookup, "HOMECHEF_ESTIMATOR_OVERHEAD_RATE", 0),
			Currency:       strings.ToUpper(stringWithDefault(lookup, "HOMECHEF_ESTIMATOR_CURRENCY", defaultCurrency)),
			Locale:         stringWithDefault(lookup, "HOMECHEF_ESTIMATOR_LOCALE", defaultLocale),
			SessionTTL:     durationWithDefault(lookup, "HOMECHEF_ESTIMATOR_SESSION_TTL", defaultSessionTTL),
		},
		RateLimits: RateLimitConfig{
			EstimatesPerMinute: intWithDefault(lookup, "HOMECHEF_RATELIMIT_ESTIMATES_PER_MIN", defaultEstimatesPerMinute),
		},
		MealPlan: MealPlanConfig{
			MaxEntries:  intWithDefault(lookup, "HOMECHEF_MEALPLAN_MAX_ENTRIES", defaultMealPlanMaxEntries),
			Concurrency: intWithDefault(lookup, "HOMECHEF_MEALPLAN_CONCURRENCY", defaultMealPlanConcurrency),
		},
		Idempotency: IdempotencyConfig{
			Header:           stringWithDefault(lookup, "HOMECHEF_IDEMPOTENCY_HEADER", defaultIdempotencyHeader),
			TTL:              durationWithDefault(lookup, "HOMECHEF_IDEMPOTENCY_TTL", defaultIdempotencyTTL),
			CleanupInterval:  durationWithDefault(lookup, "HOMECHEF_IDEMPOTENCY_CLEANUP_INTERVAL", defaultIdempotencyInterval),
			CleanupBatchSize: intWithDefault(lookup, "HOMECHEF_IDEMPOTENCY_CLEANUP_BATCH", defaultIdempotencyBatchSize),
		},
	}

	// Firestore project defaults to Firebase project when unspecified.
	if cfg.Firestore.ProjectID == "" {
		cfg.Firestore.ProjectID = cfg.Firebase.ProjectID
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	switch cfg.Store.Backend {
	case StoreBackendFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
	case StoreBackendMemory:
	default:
		missing = append(missing, "Store.Backend")
	}
	switch cfg.Estimator.TimePolicy {
	case "linear", "sqrt":
	default:
		missing = append(missing, "Estimator.TimePolicy")
	}
	if cfg.Estimator.VariationBand < 0 || cfg.Estimator.VariationBand >= 1 {
		missing = append(missing, "Estimator.VariationBand")
	}
	if cfg.Estimator.MinCost <= 0 {
		missing = append(missing, "Estimator.MinCost")
	}
	if cfg.Estimator.OverheadRate < 0 {
		missing = append(missing, "Estimator.OverheadRate")
	}
	if len(cfg.Estimator.Currency) != 3 {
		missing = append(missing, "Estimator.Currency")
	}
	if cfg.Estimator.SessionTTL <= 0 {
		missing = append(missing, "Estimator.SessionTTL")
	}
	if cfg.RateLimits.EstimatesPerMinute < 0 {
		missing = append(missing, "RateLimits.EstimatesPerMinute")
	}
	if cfg.MealPlan.MaxEntries <= 0 {
		missing = append(missing, "MealPlan.MaxEntries")
	}
	if cfg.MealPlan.Concurrency <= 0 {
		missing = append(missing, "MealPlan.Concurrency")
	}
	if strings.TrimSpace(cfg.Idempotency.Header) == "" {
		missing = append(missing, "Idempotency.Header")
	}
	if cfg.Idempotency.TTL <= 0 {
		missing = append(missing, "Idempotency.TTL")
	}
	if cfg.Idempotency.CleanupInterval <= 0 {
		missing = append(missing, "Idempotency.CleanupInterval")
	}
	if cfg.Idempotency.CleanupBatchSize <= 0 {
		missing = append(missing, "Idempotency.CleanupBatchSize")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}

func floatWithDefault(lookup func(string) (string, bool), key string, fallback float64) float64 {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return parsed
		}
	}
	return fallback
}
