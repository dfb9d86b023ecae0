// Package ai turns voice-screening call summaries into structured results.
package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ResponseCleaner strips the decoration LLMs wrap around JSON payloads.
type ResponseCleaner struct{}

// NewResponseCleaner creates a new response cleaner.
func NewResponseCleaner() *ResponseCleaner {
	return &ResponseCleaner{}
}

var trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)

// CleanJSONResponse removes markdown fences, extracts the first JSON object
// from mixed content, and repairs trailing commas.
func (rc *ResponseCleaner) CleanJSONResponse(response string) string {
	response = rc.stripCodeFences(response)
	response = rc.extractObject(response)
	if rc.IsValidJSON(response) {
		return response
	}
	return trailingCommaRe.ReplaceAllString(response, "$1")
}

func (rc *ResponseCleaner) stripCodeFences(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// extractObject returns the first brace-balanced object in the input. Models
// often preface the JSON with prose; everything outside the braces is noise.
func (rc *ResponseCleaner) extractObject(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return response
	}
	depth := 0
	for i := start; i < len(response); i++ {
		switch response[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return response[start:]
}

// IsValidJSON checks if a string is valid JSON.
func (rc *ResponseCleaner) IsValidJSON(response string) bool {
	var tmp any
	return json.Unmarshal([]byte(response), &tmp) == nil
}
