// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"acadezone-chatbot/internal/common/validation"
)

// LoadSettings reads and validates the chatbot settings file. A missing
// path ("" or nonexistent file) yields the defaults.
func LoadSettings(path string) (*ChatbotSettings, error) {
	if path == "" {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var document map[string]interface{}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}
	if err := validation.MustBeValid(document, settingsSchema); err != nil {
		return nil, fmt.Errorf("invalid settings file %s: %w", path, err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("decode settings file: %w", err)
	}
	return settings, nil
}
