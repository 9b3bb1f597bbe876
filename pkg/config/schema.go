package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaJSON []byte

// Schema returns the embedded JSON schema for the config file.
func Schema() []byte {
	out := make([]byte, len(schemaJSON))
	copy(out, schemaJSON)

	return out
}

// ValidateFile checks a YAML or JSON config file against the embedded
// schema. Other formats are accepted unchecked.
func ValidateFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	return ValidateDocument(data)
}

// ValidateDocument checks raw YAML (or JSON) config text against the
// embedded schema. An empty document is valid.
func ValidateDocument(data []byte) error {
	var doc any

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}

	if doc == nil {
		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, resErr := range result.Errors() {
		problems = append(problems, resErr.Field()+": "+resErr.Description())
	}

	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(problems, "; "))
}
