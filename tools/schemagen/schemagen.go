// Package main generates JSON schemas for the wrapgen config file and the
// `wrapgen funcs -f json` output.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/wrapgen/pkg/cheader"
	"github.com/Sumatoshi-tech/wrapgen/pkg/config"
)

// Schema represents a JSON Schema.
type Schema struct {
	Schema               string             `json:"$schema,omitempty"`
	Title                string             `json:"title,omitempty"`
	Description          string             `json:"description,omitempty"`
	Type                 string             `json:"type,omitempty"`
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Items                *Schema            `json:"items,omitempty"`
	Required             []string           `json:"required,omitempty"`
	Enum                 []string           `json:"enum,omitempty"`
	Minimum              *float64           `json:"minimum,omitempty"`
	Maximum              *float64           `json:"maximum,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`
	Ref                  string             `json:"$ref,omitempty"`
	Definitions          map[string]*Schema `json:"definitions,omitempty"`
}

// generator walks Go types using one struct tag for property names.
type generator struct {
	defs map[string]*Schema
	tag  string
	// strict closes objects to unknown keys and reads `schema` tag options.
	strict bool
}

func main() {
	var outputDir, configOut string

	flag.StringVar(&outputDir, "o", "docs/schemas", "Output directory for output schemas")
	flag.StringVar(&configOut, "config", "pkg/config/config.schema.json", "Path of the config file schema")
	flag.Parse()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	funcs := functionsSchema()
	if err := writeSchema(filepath.Join(outputDir, "functions.json"), funcs); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing functions schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Generated schema for functions")

	cfg := configSchema()
	if err := writeSchema(configOut, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing config schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Generated schema for config")
}

func functionsSchema() *Schema {
	gen := &generator{defs: make(map[string]*Schema), tag: "json"}

	return &Schema{
		Schema:      "https://json-schema.org/draft-07/schema#",
		Title:       "Wrapgen Functions",
		Description: "JSON schema for the signature collection printed by wrapgen funcs",
		Type:        "array",
		Items:       gen.typeToSchema(reflect.TypeFor[cheader.Function]()),
		Definitions: gen.defs,
	}
}

func configSchema() *Schema {
	gen := &generator{defs: make(map[string]*Schema), tag: "mapstructure", strict: true}
	props, required := gen.structToProperties(reflect.TypeFor[config.Config]())

	return &Schema{
		Schema:               "https://json-schema.org/draft-07/schema#",
		Title:                "Wrapgen Configuration",
		Description:          "JSON schema for wrapgen.yaml",
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: closed(),
		Definitions:          gen.defs,
	}
}

func (g *generator) structToProperties(t reflect.Type) (map[string]*Schema, []string) {
	props := make(map[string]*Schema)

	var required []string

	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get(g.tag)

		if tag == "-" || tag == "" {
			continue
		}

		parts := strings.Split(tag, ",")
		name := parts[0]

		fieldSchema := g.typeToSchema(field.Type)

		isRequired := false

		if g.strict {
			isRequired = applyOptions(fieldSchema, field.Tag.Get("schema"))
		} else {
			isRequired = len(parts) == 1 || parts[1] != "omitempty"
		}

		props[name] = fieldSchema

		if isRequired {
			required = append(required, name)
		}
	}

	return props, required
}

// applyOptions applies `schema:"required,min=0,max=1,enum=a|b"` options and
// reports whether the field is required.
func applyOptions(s *Schema, raw string) bool {
	required := false

	for opt := range strings.SplitSeq(raw, ",") {
		key, value, _ := strings.Cut(opt, "=")

		switch key {
		case "required":
			required = true
		case "min":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				s.Minimum = &f
			}
		case "max":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				s.Maximum = &f
			}
		case "enum":
			s.Enum = strings.Split(value, "|")
		}
	}

	return required
}

func (g *generator) typeToSchema(t reflect.Type) *Schema {
	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}

	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}

	case reflect.Bool:
		return &Schema{Type: "boolean"}

	case reflect.Slice:
		return &Schema{
			Type:  "array",
			Items: g.typeToSchema(t.Elem()),
		}

	case reflect.Struct:
		defName := t.Name()

		if _, exists := g.defs[defName]; !exists {
			// Reserve the name first so recursive types terminate.
			g.defs[defName] = &Schema{}
			props, required := g.structToProperties(t)

			def := &Schema{Type: "object", Properties: props, Required: required}
			if g.strict {
				def.AdditionalProperties = closed()
			}

			g.defs[defName] = def
		}

		return &Schema{Ref: "#/definitions/" + defName}

	case reflect.Ptr:
		return g.typeToSchema(t.Elem())

	default:
		return &Schema{Type: "object"}
	}
}

func closed() *bool {
	f := false

	return &f
}

func writeSchema(path string, schema *Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	data = append(data, '\n')

	return os.WriteFile(path, data, 0o644)
}
