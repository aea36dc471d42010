package doctpl

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Load decodes a YAML (or JSON) template and validates it.
func Load(r io.Reader) (TemplateConfig, error) {
	var cfg TemplateConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return TemplateConfig{}, fmt.Errorf("doctpl: parsing template: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return TemplateConfig{}, err
	}
	return cfg, nil
}

// Encode writes cfg as YAML.
func Encode(w io.Writer, cfg TemplateConfig) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("doctpl: encoding template: %w", err)
	}
	return enc.Close()
}
