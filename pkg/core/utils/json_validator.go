package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// StripCodeFences removes a wrapping markdown code block from model output.
// Models frequently return ```json ... ``` even when asked for raw JSON.
func StripCodeFences(input string) string {
	cleaned := strings.TrimSpace(input)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "```")
	// Drop the language tag on the opening fence ("json", "markdown", ...).
	if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(cleaned[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, "{}[]\":") {
			cleaned = cleaned[idx+1:]
		}
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	return strings.TrimSpace(cleaned)
}

// RepairJSON attempts to fix common JSON defects in model output: single
// quotes, unquoted keys, trailing commas, unclosed brackets.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses Human-friendly JSON (comments, unquoted keys, optional
// commas) and returns standard JSON. Last-ditch path for lenient output.
func ParseHJSON(input string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(input), &result); err != nil {
		return "", fmt.Errorf("hjson parse failed: %w", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("hjson re-marshal failed: %w", err)
	}
	return string(out), nil
}

// ParseLLMOutput decodes a model reply into schema, trying progressively
// more forgiving strategies:
//  1. Standard JSON (after stripping code fences)
//  2. JSON repair
//  3. Hjson
func ParseLLMOutput(raw string, schema interface{}) error {
	input := StripCodeFences(raw)

	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}

	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}

	if converted, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(converted), schema); err == nil {
			return nil
		}
	}

	return fmt.Errorf("all parsing strategies failed for model output")
}
