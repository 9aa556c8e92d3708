package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// LoaderConfig holds optional file overrides for LoadConfig.
type LoaderConfig struct {
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct .env file path (optional)
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// LoadConfig loads configuration for a service into the provided cfg struct.
// It searches for config.yml and .env files in standard locations, binds
// environment variables, and unmarshals the result into cfg.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}

	if lc.ConfigFile == "" {
		lc.ConfigFile = findFile(configSearchPaths(serviceName))
	}
	if lc.EnvFile == "" {
		lc.EnvFile = findFile(envSearchPaths(serviceName))
	}

	v := viper.New()

	// 1. Load YAML config first (base configuration)
	if lc.ConfigFile != "" && exists(lc.ConfigFile) {
		v.SetConfigFile(lc.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			fmt.Printf("[config] warning: failed to load config file %s: %v\n", lc.ConfigFile, err)
		}
	}

	// 2. Enable automatic environment variable reading
	v.AutomaticEnv()
	autoBindEnvVars(v)

	// 3. Load .env file
	if lc.EnvFile != "" && exists(lc.EnvFile) {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			fmt.Printf("[config] warning: failed to load .env file %s: %v\n", lc.EnvFile, err)
		} else {
			// Re-bind env vars after loading .env to pick up new variables
			autoBindEnvVars(v)
		}
	}

	// 4. Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}

	return nil
}

func configSearchPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../cmd/%s/config.yml", serviceName),
		fmt.Sprintf("../../cmd/%s/config.yml", serviceName),
		"./config/config.yml",
		"../config/config.yml",
		"./config.yml",
	}
}

func envSearchPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/.env", serviceName),
		fmt.Sprintf(".env.%s", serviceName),
		"./.env",
		"../.env",
	}
}

func findFile(paths []string) string {
	for _, path := range paths {
		if exists(path) {
			return path
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// autoBindEnvVars automatically binds environment variables to Viper
// by converting UPPER_CASE_WITH_UNDERSCORES to multiple possible nested key formats.
func autoBindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}

		for _, variant := range generateEnvKeyVariants(pair[0]) {
			v.Set(variant, pair[1])
		}
	}
}

// generateEnvKeyVariants creates possible key variants for environment
// variable binding.
//
// Example: WHISPER_BASE_URL -> [whisper_base_url, whisper.base.url, whisper.base_url]
func generateEnvKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")

	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}

	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	return removeDuplicates(variants)
}

func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}

	return result
}
