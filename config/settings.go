// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific API key lookup

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	Analysis AnalysisConfig
	Crawl    CrawlConfig
	Data     DataConfig
}

// AnalysisConfig holds LLM analysis configuration.
type AnalysisConfig struct {
	Provider   string
	RetryMax   int
	RetryDelay time.Duration
}

// CrawlConfig holds feed crawling configuration.
type CrawlConfig struct {
	Username    string
	AccessToken string
	DateNum     int
}

// DataConfig holds file and database locations, all under one data
// directory.
type DataConfig struct {
	Dir            string
	PostsFile      string
	CheckpointFile string
	AnalyzedFile   string
	DatabaseFile   string
}

// providerInfo holds configuration for a specific LLM provider.
type providerInfo struct {
	apiKeyEnv string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"gemini":    {"GEMINI_API_KEY"},
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// New loads settings from environment variables, applying defaults for
// anything unset. Returns an error for unparseable values or an unknown
// LLM_PROVIDER.
func New() (Settings, error) {
	provider := normalizeProvider(getEnv("LLM_PROVIDER", "gemini"))
	if _, err := getProviderInfo(provider); err != nil {
		return Settings{}, err
	}

	retryMax, err := getEnvInt("MODEL_RETRY_MAX_NUM", 3)
	if err != nil {
		return Settings{}, err
	}

	retryDelaySec, err := getEnvInt("MODEL_RETRY_DELAY_SECONDS", 60)
	if err != nil {
		return Settings{}, err
	}

	dateNum, err := getEnvInt("CRAWL_DATE_NUM", 365+60)
	if err != nil {
		return Settings{}, err
	}

	dataDir := getEnv("DATA_DIR", "data")

	return Settings{
		Analysis: AnalysisConfig{
			Provider:   provider,
			RetryMax:   retryMax,
			RetryDelay: time.Duration(retryDelaySec) * time.Second,
		},
		Crawl: CrawlConfig{
			Username:    os.Getenv("JIKE_USERNAME"),
			AccessToken: os.Getenv("JIKE_ACCESS_TOKEN"),
			DateNum:     dateNum,
		},
		Data: DataConfig{
			Dir:            dataDir,
			PostsFile:      filepath.Join(dataDir, "simple_user_posts.json"),
			CheckpointFile: filepath.Join(dataDir, "checkpoint.json"),
			AnalyzedFile:   filepath.Join(dataDir, "analyzed_posts.json"),
			DatabaseFile:   filepath.Join(dataDir, "posts.db"),
		},
	}, nil
}

// MustNew loads settings and panics on error. Use this only when
// configuration errors should be fatal.
func MustNew() Settings {
	settings, err := New()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(provider)
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyFor returns the API key for a provider from environment variables.
func APIKeyFor(provider string) (string, error) {
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return "", err
	}

	key := os.Getenv(info.apiKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", info.apiKeyEnv)
	}
	return key, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}
