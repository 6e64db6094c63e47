// Package masking redacts provider credentials before they leave the
// service.
package masking

import "strings"

const maskToken = "****"

// MaskSecret redacts a secret while keeping its last four characters so the
// user can tell two keys apart. Short values are masked entirely.
func MaskSecret(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) <= 8 {
		return maskToken
	}
	return maskToken + trimmed[len(trimmed)-4:]
}

// MaskConfig returns a copy of config with every string value masked except
// the keys listed in visible. Nested maps and lists are masked recursively.
func MaskConfig(config map[string]any, visible ...string) map[string]any {
	if len(config) == 0 {
		return nil
	}
	keep := make(map[string]struct{}, len(visible))
	for _, key := range visible {
		keep[key] = struct{}{}
	}

	masked := make(map[string]any, len(config))
	for key, value := range config {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := keep[key]; ok {
			masked[key] = value
			continue
		}
		masked[key] = maskValue(value)
	}
	if len(masked) == 0 {
		return nil
	}
	return masked
}

func maskValue(value any) any {
	switch cast := value.(type) {
	case string:
		return MaskSecret(cast)
	case map[string]any:
		return MaskConfig(cast)
	case []any:
		out := make([]any, 0, len(cast))
		for _, item := range cast {
			out = append(out, maskValue(item))
		}
		return out
	default:
		return value
	}
}
