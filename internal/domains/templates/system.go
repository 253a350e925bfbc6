package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// SystemTemplate is a template shipped with the service. System templates are
// seeded on startup and cannot be edited or deleted through the API.
type SystemTemplate struct {
	Key      string   `yaml:"key"`
	Name     string   `yaml:"name"`
	Category string   `yaml:"category"`
	Channel  string   `yaml:"channel"`
	Subject  string   `yaml:"subject,omitempty"`
	Body     string   `yaml:"body"`
	Tags     []string `yaml:"tags,omitempty"`
}

// LoadSystemTemplates returns the bundled templates ordered by key.
func LoadSystemTemplates() ([]SystemTemplate, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("read builtin templates: %w", err)
	}

	templates := make([]SystemTemplate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := builtinFS.ReadFile("builtin/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read builtin template %s: %w", entry.Name(), err)
		}
		var tmpl SystemTemplate
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("parse builtin template %s: %w", entry.Name(), err)
		}
		if tmpl.Key == "" {
			return nil, fmt.Errorf("builtin template %s has no key", entry.Name())
		}
		templates = append(templates, tmpl)
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Key < templates[j].Key
	})

	return templates, nil
}
