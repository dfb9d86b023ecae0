// Package config provides configuration loading utilities for screening scripts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ScriptConfig holds the interview material used to build call scripts and
// voice-agent prompts.
type ScriptConfig struct {
	Greeting  string
	Questions []string
	Closing   string
}

// ScriptYAML represents the structure of screening script YAML files.
type ScriptYAML struct {
	Texts []string `yaml:"texts"`
}

// LoadScriptConfig loads the screening script configuration from YAML files.
func LoadScriptConfig() (*ScriptConfig, error) {
	cfg := &ScriptConfig{}

	greeting, err := loadTextFromYAML("configs/screening/greeting.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load greeting: %w", err)
	}
	cfg.Greeting = greeting

	questions, err := loadTextsFromYAML("configs/screening/questions.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	cfg.Questions = questions

	closing, err := loadTextFromYAML("configs/screening/closing.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load closing: %w", err)
	}
	cfg.Closing = closing

	return cfg, nil
}

// loadTextsFromYAML loads all text entries from a script YAML file.
func loadTextsFromYAML(filePath string) ([]string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", absPath)
	}

	// #nosec G304 -- Configuration files are expected to be safe
	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var scriptYAML ScriptYAML
	if err := yaml.Unmarshal(content, &scriptYAML); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(scriptYAML.Texts) == 0 {
		return nil, fmt.Errorf("no texts found in config file: %s", filePath)
	}

	texts := make([]string, 0, len(scriptYAML.Texts))
	for _, t := range scriptYAML.Texts {
		t = strings.TrimSpace(t)
		if t != "" {
			texts = append(texts, t)
		}
	}
	return texts, nil
}

// loadTextFromYAML loads the text entries from a script YAML file joined as one string.
func loadTextFromYAML(filePath string) (string, error) {
	texts, err := loadTextsFromYAML(filePath)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(texts, "\n")), nil
}

// DefaultScriptConfig returns the built-in screening script used when the
// YAML files are absent.
func DefaultScriptConfig() *ScriptConfig {
	return &ScriptConfig{
		Greeting: "Hello! This is an automated call from the recruitment team. " +
			"We would like to ask you a few questions about your experience and qualifications.",
		Questions: []string{
			"Please tell me about your relevant work experience for this role.",
			"What is your notice period at your current job?",
			"What is your current compensation, and what compensation do you expect for this role?",
		},
		Closing: "Thank you for your time. We will get back to you soon.",
	}
}

// GetScriptConfig returns the configured screening script, falling back to
// the built-in defaults when config files are missing or malformed.
func GetScriptConfig() *ScriptConfig {
	cfg, err := LoadScriptConfig()
	if err != nil {
		return DefaultScriptConfig()
	}
	return cfg
}
