/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PublicBaseURL is the public deployment of the demo bookstore.
const PublicBaseURL = "https://fakerestapi.azurewebsites.net"

type TestConfig struct {
	// BaseURL is the upstream root. When empty the suites start an
	// in-process fake and point the clients at it.
	BaseURL           string
	RequestTimeout    time.Duration
	TestTimeout       time.Duration
	RequestsPerSecond float64
	ExpectationsFile  string
	FakePersist       bool
	SkipIntegration   bool
	DebugLogging      bool
	LogRequests       bool
	LogResponses      bool
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if a supplied value cannot be used.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	config := &TestConfig{
		BaseURL:           strings.TrimSpace(os.Getenv("API_BASE_URL")),
		RequestTimeout:    getDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second),
		TestTimeout:       getDurationWithDefault("TEST_TIMEOUT", 5*time.Minute),
		RequestsPerSecond: getFloatWithDefault("REQUESTS_PER_SECOND", 0),
		ExpectationsFile:  os.Getenv("EXPECTATIONS_FILE"),
		FakePersist:       getBoolWithDefault("FAKE_PERSIST", false),
		SkipIntegration:   getBoolWithDefault("SKIP_INTEGRATION", false),
		DebugLogging:      getBoolWithDefault("DEBUG_LOGGING", false),
		LogRequests:       getBoolWithDefault("LOG_REQUESTS", false),
		LogResponses:      getBoolWithDefault("LOG_RESPONSES", false),
	}

	if config.BaseURL == "public" {
		config.BaseURL = PublicBaseURL
	}

	if err := validateFields(config); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultTestConfig returns the configuration used when nothing is set in the
// environment.
func DefaultTestConfig() *TestConfig {
	return &TestConfig{
		RequestTimeout: 30 * time.Second,
		TestTimeout:    5 * time.Minute,
	}
}

// UsesFake reports whether the suites should serve the upstream themselves.
func (c *TestConfig) UsesFake() bool {
	return c.BaseURL == ""
}

// WithBaseURL returns a copy of the configuration bound to another upstream.
func (c *TestConfig) WithBaseURL(baseURL string) *TestConfig {
	copied := *c
	copied.BaseURL = baseURL

	return &copied
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getFloatWithDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatValue
}

func loadEnvFile() {
	envPaths := []string{
		"../../.env",    // From test/api directory
		"../../../.env", // From test/api/suites directory
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	// Existing environment variables take precedence over the file.
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

// validateFields checks that supplied configuration values are usable.
func validateFields(config *TestConfig) error {
	var invalid []string

	if config.BaseURL != "" {
		u, err := url.Parse(config.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			invalid = append(invalid, "API_BASE_URL")
		}
	}

	if config.RequestsPerSecond < 0 {
		invalid = append(invalid, "REQUESTS_PER_SECOND")
	}

	if config.ExpectationsFile != "" {
		if _, err := os.Stat(config.ExpectationsFile); err != nil {
			invalid = append(invalid, "EXPECTATIONS_FILE")
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid configuration: %s. Please fix these environment variables or the .env file", strings.Join(invalid, ", "))
	}

	return nil
}
