package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pelletier/go-toml"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema.json
var schemaJSON string

const schemaURL = "https://github.com/panbanda/glint/config.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// ValidateFile checks the raw document at path against the config schema.
// Unlike Load it rejects unknown keys, which catches misspelled options
// that would otherwise be ignored silently.
func ValidateFile(path string) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return validateRaw(k.Raw())
}

func validateRaw(raw map[string]any) error {
	sch, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	// Normalize the parser's native types (int64, time values, typed maps)
	// into the plain JSON values the validator understands.
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}

// TOML renders the config as a TOML document that Load reads back.
func (c *Config) TOML() ([]byte, error) {
	content, err := toml.Marshal(*c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return content, nil
}
