package bays

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var envRef = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Loader reads the bay inventory file
type Loader struct {
	filePath string
}

// NewLoader creates a new inventory loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the inventory file
func (l *Loader) Load() (InventoryConfig, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return InventoryConfig{}, fmt.Errorf("failed to read bay inventory: %w", err)
	}

	var config InventoryConfig
	if err := yaml.Unmarshal(expandEnv(data), &config); err != nil {
		return InventoryConfig{}, fmt.Errorf("failed to parse bay inventory yaml: %w", err)
	}
	return config, nil
}

// expandEnv replaces {{VAR}} references with the environment value.
// Unset variables expand to an empty string.
// Example: api_address: {{BAY_A_API}} -> api_address: https://10.0.0.5:6443
func expandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envRef.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}
