package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MitigationSchemaVersion is written into every normalised mitigation payload.
const MitigationSchemaVersion = "2.0"

type MitigationStep struct {
	StepNumber  int    `json:"stepNumber"`
	Description string `json:"description"`
}

// Mitigation is the canonical structured mitigation plan.
type Mitigation struct {
	Steps       []MitigationStep `json:"steps"`
	TotalSteps  int              `json:"totalSteps"`
	LastUpdated string           `json:"lastUpdated"`
	Version     string           `json:"version"`
}

var (
	numberedStart  = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	numberedMarker = regexp.MustCompile(`(?:^|\s)\d+[.)]\s+`)
	bulletPrefix   = regexp.MustCompile(`^[-*•]+\s*`)
)

// NewMitigation builds a canonical plan from step descriptions, dropping
// blank entries and numbering from 1.
func NewMitigation(descriptions []string) Mitigation {
	m := Mitigation{Steps: []MitigationStep{}, Version: MitigationSchemaVersion}
	for _, d := range descriptions {
		d = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(d), ""))
		if d == "" {
			continue
		}
		m.Steps = append(m.Steps, MitigationStep{StepNumber: len(m.Steps) + 1, Description: d})
	}
	m.TotalSteps = len(m.Steps)
	return m
}

// ParseMitigationText splits legacy free text into steps. Numbered lists
// ("1. ... 2. ...") win over newlines, newlines over semicolons.
func ParseMitigationText(text string) Mitigation {
	text = strings.TrimSpace(text)
	if text == "" {
		return NewMitigation(nil)
	}

	var parts []string
	switch {
	case numberedStart.MatchString(text):
		parts = numberedMarker.Split(text, -1)
	case strings.Contains(text, "\n"):
		parts = strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	case strings.Contains(text, ";"):
		parts = strings.Split(text, ";")
	default:
		parts = []string{text}
	}
	return NewMitigation(parts)
}

// NormalizeMitigation accepts any of the stored or submitted mitigation
// shapes and returns the canonical structure: a JSON string of free text, an
// array of strings or step objects, an object with a single description, or
// an already canonical object (which gets renumbered).
func NormalizeMitigation(raw json.RawMessage) (Mitigation, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return NewMitigation(nil), nil
	}

	switch raw[0] {
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return Mitigation{}, fmt.Errorf("invalid mitigation text: %w", err)
		}
		// Text that itself holds JSON was double encoded by older clients.
		if trimmed := strings.TrimSpace(text); strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			if m, err := NormalizeMitigation(json.RawMessage(trimmed)); err == nil {
				return m, nil
			}
		}
		return ParseMitigationText(text), nil

	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Mitigation{}, fmt.Errorf("invalid mitigation list: %w", err)
		}
		descriptions := make([]string, 0, len(items))
		for _, item := range items {
			d, err := stepDescription(item)
			if err != nil {
				return Mitigation{}, err
			}
			descriptions = append(descriptions, d)
		}
		return NewMitigation(descriptions), nil

	case '{':
		var obj struct {
			Steps       []json.RawMessage `json:"steps"`
			Description *string           `json:"description"`
			LastUpdated string            `json:"lastUpdated"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return Mitigation{}, fmt.Errorf("invalid mitigation object: %w", err)
		}
		var m Mitigation
		switch {
		case obj.Steps != nil:
			descriptions := make([]string, 0, len(obj.Steps))
			for _, item := range obj.Steps {
				d, err := stepDescription(item)
				if err != nil {
					return Mitigation{}, err
				}
				descriptions = append(descriptions, d)
			}
			m = NewMitigation(descriptions)
		case obj.Description != nil:
			m = ParseMitigationText(*obj.Description)
		default:
			return Mitigation{}, errors.New("mitigation object needs steps or description")
		}
		m.LastUpdated = obj.LastUpdated
		return m, nil
	}

	return Mitigation{}, fmt.Errorf("unsupported mitigation payload starting with %q", raw[0])
}

func stepDescription(item json.RawMessage) (string, error) {
	item = bytes.TrimSpace(item)
	if len(item) > 0 && item[0] == '"' {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return "", fmt.Errorf("invalid mitigation step: %w", err)
		}
		return s, nil
	}
	var step struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(item, &step); err != nil {
		return "", fmt.Errorf("invalid mitigation step: %w", err)
	}
	return step.Description, nil
}

// Validate checks the canonical shape after a read from storage.
func (m Mitigation) Validate() error {
	if m.Version == "" && len(m.Steps) == 0 && m.TotalSteps == 0 {
		return nil // never set
	}
	if m.TotalSteps != len(m.Steps) {
		return fmt.Errorf("mitigation totalSteps %d does not match %d steps", m.TotalSteps, len(m.Steps))
	}
	for i, s := range m.Steps {
		if s.StepNumber != i+1 {
			return fmt.Errorf("mitigation step %d has stepNumber %d", i+1, s.StepNumber)
		}
	}
	return nil
}
