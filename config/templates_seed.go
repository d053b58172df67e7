package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yoockh/yoointerview/internal/models"
)

type templateSeedFile struct {
	Templates []models.Template `yaml:"templates"`
}

// LoadTemplateSeed reads global role templates from a YAML file.
func LoadTemplateSeed(path string) ([]models.Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTemplateSeed(raw)
}

func ParseTemplateSeed(raw []byte) ([]models.Template, error) {
	var f templateSeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("template seed: %w", err)
	}
	for i, t := range f.Templates {
		if t.ID == "" || t.Title == "" || t.Role == "" {
			return nil, fmt.Errorf("template seed: entry %d needs id, title and role", i)
		}
	}
	return f.Templates, nil
}
