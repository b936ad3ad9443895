// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ja-redact/internal/allowlist"
	"ja-redact/internal/analyzer"
	"ja-redact/internal/enhancer"
	"ja-redact/internal/filter"
	"ja-redact/internal/nlp"
	"ja-redact/internal/recognizers"
)

// Config represents the application configuration. It is built once at
// startup and shared read-only by every worker.
type Config struct {
	Analysis    AnalysisConfig           `yaml:"analysis"`
	Context     ContextConfig            `yaml:"context"`
	Recognizers []recognizers.Definition `yaml:"recognizers"`
	Filter      FilterConfig             `yaml:"filter"`
	NLP         NLPConfig                `yaml:"nlp"`
	Batch       BatchConfig              `yaml:"batch"`
	Logging     LoggingConfig            `yaml:"logging"`
}

// AnalysisConfig holds the options passed to every recognizer.
type AnalysisConfig struct {
	Language       string   `yaml:"language" validate:"required"`
	ScoreThreshold float64  `yaml:"score_threshold" validate:"gte=0,lte=1"`
	TargetEntities []string `yaml:"target_entities" validate:"dive,required"`
	AllowList      []string `yaml:"allow_list"`
	AllowListFile  string   `yaml:"allow_list_file"`
}

// ContextConfig tunes the context boost.
type ContextConfig struct {
	SimilarityFactor    float64             `yaml:"similarity_factor" validate:"gte=0,lte=1"`
	MinScoreWithContext float64             `yaml:"min_score_with_context" validate:"gte=0,lte=1"`
	WindowChars         int                 `yaml:"window_chars" validate:"gte=0"`
	WindowOverrides     map[string]int      `yaml:"window_overrides" validate:"dive,gte=0"`
	Words               map[string][]string `yaml:"words"`
}

// FilterConfig tunes false-positive suppression.
type FilterConfig struct {
	// Replaces the built-in list when set
	CommonWords      []string `yaml:"common_words"`
	ExtraCommonWords []string `yaml:"extra_common_words"`

	BusinessSuffixPattern string   `yaml:"business_suffix_pattern" validate:"required"`
	PersonMinScore        float64  `yaml:"person_min_score" validate:"gte=0,lte=1"`
	PersonWindowChars     int      `yaml:"person_window_chars" validate:"gte=0"`
	AmountWindowBefore    int      `yaml:"amount_window_before" validate:"gte=0"`
	AmountWindowAfter     int      `yaml:"amount_window_after" validate:"gte=0"`
	AmountContextWords    []string `yaml:"amount_context_words"`
}

// NLPConfig selects the statistical recognizer.
type NLPConfig struct {
	Engine    string        `yaml:"engine" validate:"oneof=kagome sidecar none"`
	URL       string        `yaml:"url" validate:"omitempty,url"`
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	Score     float64       `yaml:"score" validate:"gte=0,lte=1"`
	Serialize bool          `yaml:"serialize"`
}

// BatchConfig controls the batch runner.
type BatchConfig struct {
	Pattern string `yaml:"pattern" validate:"required"`
	Workers int    `yaml:"workers" validate:"gte=1"`
	Prefix  string `yaml:"prefix"`
	Limit   int    `yaml:"limit" validate:"gte=0"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error off"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// Environment variables that override file settings.
const (
	EnvScoreThreshold = "JA_REDACT_SCORE_THRESHOLD"
	EnvNLPEngine      = "JA_REDACT_NLP_ENGINE"
	EnvNLPURL         = "JA_REDACT_NLP_URL"
	EnvLogLevel       = "JA_REDACT_LOG_LEVEL"
	EnvLogFormat      = "JA_REDACT_LOG_FORMAT"
	EnvWorkers        = "JA_REDACT_WORKERS"
)

// Default returns the built-in configuration.
func Default() *Config {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	es := enhancer.DefaultSettings()
	fd := filter.DefaultSettings()

	return &Config{
		Analysis: AnalysisConfig{
			Language:       "ja",
			ScoreThreshold: 0.5,
		},
		Context: ContextConfig{
			SimilarityFactor:    es.SimilarityFactor,
			MinScoreWithContext: es.MinScoreWithContext,
			WindowChars:         es.WindowChars,
		},
		Filter: FilterConfig{
			BusinessSuffixPattern: fd.BusinessSuffixPattern,
			PersonMinScore:        fd.PersonMinScore,
			PersonWindowChars:     fd.PersonWindowChars,
			AmountWindowBefore:    fd.AmountWindowBefore,
			AmountWindowAfter:     fd.AmountWindowAfter,
			AmountContextWords:    fd.AmountContextWords,
		},
		NLP: NLPConfig{
			Engine:    nlp.EngineKagome,
			Timeout:   10 * time.Second,
			Score:     nlp.DefaultScore,
			Serialize: true,
		},
		Batch: BatchConfig{
			Pattern: "*.md",
			Workers: workers,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from the specified file path. An empty
// path yields the defaults. Keys absent from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()
	if configPath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Resolve builds the effective configuration of a command: .env, then the
// file (configPath or the first one FindConfigFile sees), then environment
// overrides. The result is validated.
func Resolve(configPath string, lookup func(string) (string, bool)) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath = FindConfigFile()
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(config, lookup); err != nil {
		return nil, err
	}
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadConfigOrDefault loads the configuration, falling back to defaults
// when the file is missing or invalid.
func LoadConfigOrDefault(configPath string) *Config {
	config, err := LoadConfig(configPath)
	if err != nil {
		return Default()
	}
	return config
}

// FindConfigFile looks for a configuration file in the working directory.
func FindConfigFile() string {
	for _, name := range []string{"ja-redact.yaml", "ja-redact.yml", "config.yaml"} {
		if fileExists(name) {
			return name
		}
	}
	return ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

// LoadDotEnv loads .env style files into the process environment. Missing
// files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides configuration from environment variables. lookup is
// usually os.LookupEnv.
func ApplyEnv(config *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvScoreThreshold); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvScoreThreshold, err)
		}
		config.Analysis.ScoreThreshold = f
	}
	if v, ok := lookup(EnvNLPEngine); ok {
		config.NLP.Engine = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvNLPURL); ok {
		config.NLP.URL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok {
		config.Logging.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvLogFormat); ok {
		config.Logging.Format = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		config.Batch.Workers = n
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks field ranges and compiles every custom pattern.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}
	if err := validate.Struct(config); err != nil {
		return err
	}
	if config.NLP.Engine == nlp.EngineSidecar && config.NLP.URL == "" {
		return fmt.Errorf("nlp.url is required when nlp.engine is %q", nlp.EngineSidecar)
	}
	if _, err := regexp.Compile(config.Filter.BusinessSuffixPattern); err != nil {
		return fmt.Errorf("filter.business_suffix_pattern: %w", err)
	}
	for _, def := range config.Recognizers {
		if def.Name == "" {
			return fmt.Errorf("recognizers: every entry needs a name")
		}
	}
	if _, err := config.Catalog(); err != nil {
		return err
	}
	return nil
}

// Catalog compiles the built-in recognizers merged with the configured ones.
func (c *Config) Catalog() (*recognizers.Catalog, error) {
	defs := recognizers.MergeDefinitions(recognizers.DefaultDefinitions(), c.Recognizers)
	return recognizers.Compile(defs, c.ContextWords())
}

// ContextWords returns the context-word table with configured overrides.
func (c *Config) ContextWords() map[string][]string {
	return recognizers.MergeContextWords(recognizers.DefaultContextWords(), c.Context.Words)
}

// EnhancerSettings converts the context section.
func (c *Config) EnhancerSettings() enhancer.Settings {
	return enhancer.Settings{
		SimilarityFactor:    c.Context.SimilarityFactor,
		MinScoreWithContext: c.Context.MinScoreWithContext,
		WindowChars:         c.Context.WindowChars,
		WindowOverrides:     c.Context.WindowOverrides,
	}
}

// FilterSettings converts the filter section.
func (c *Config) FilterSettings() filter.Settings {
	common := c.Filter.CommonWords
	if len(common) == 0 {
		common = filter.DefaultCommonWords()
	}
	common = append(append([]string(nil), common...), c.Filter.ExtraCommonWords...)

	return filter.Settings{
		CommonWords:           common,
		BusinessSuffixPattern: c.Filter.BusinessSuffixPattern,
		PersonMinScore:        c.Filter.PersonMinScore,
		PersonWindowChars:     c.Filter.PersonWindowChars,
		PersonContextWords:    c.ContextWords()["PERSON"],
		AmountWindowBefore:    c.Filter.AmountWindowBefore,
		AmountWindowAfter:     c.Filter.AmountWindowAfter,
		AmountContextWords:    c.Filter.AmountContextWords,
	}
}

// AnalyzerSettings converts the analysis section.
func (c *Config) AnalyzerSettings() analyzer.Settings {
	return analyzer.Settings{
		Language:          c.Analysis.Language,
		ScoreThreshold:    c.Analysis.ScoreThreshold,
		TargetEntities:    c.Analysis.TargetEntities,
		SerializeExternal: c.NLP.Serialize,
	}
}

// NLPSettings converts the nlp section.
func (c *Config) NLPSettings() nlp.Settings {
	return nlp.Settings{
		Engine:  c.NLP.Engine,
		URL:     c.NLP.URL,
		Timeout: c.NLP.Timeout,
		Score:   c.NLP.Score,
	}
}

// AllowList builds the allow-list from inline values and allow_list_file.
// Rules in the file that have expired at now are skipped.
func (c *Config) AllowList(now time.Time) (*allowlist.List, error) {
	list := allowlist.New(c.Analysis.AllowList...)
	if c.Analysis.AllowListFile == "" {
		return list, nil
	}
	f, err := allowlist.LoadFile(c.Analysis.AllowListFile)
	if err != nil {
		return nil, err
	}
	list.Add(f, now)
	return list, nil
}
