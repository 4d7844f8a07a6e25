package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrTemplateNotFound is returned when no template with the given name exists
var ErrTemplateNotFound = errors.New("template not found")

//go:embed templates/*.yaml
var builtinTemplates embed.FS

// Template is a named prompt template. Prompt may contain the $input placeholder.
type Template struct {
	Name   string `yaml:"-"`
	Prompt string `yaml:"prompt"`
}

// TemplateLoader loads templates by name
type TemplateLoader interface {
	Load(name string) (*Template, error)
}

// DirLoader reads <name>.yaml or <name>.yml from a directory and falls back
// to the built-in templates.
type DirLoader struct {
	dir string
}

// NewDirLoader creates a loader for dir. An empty dir only serves built-ins.
func NewDirLoader(dir string) *DirLoader {
	return &DirLoader{dir: dir}
}

// Load finds and parses the named template
func (l *DirLoader) Load(name string) (*Template, error) {
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("invalid template name '%s'", name)
	}

	for _, ext := range []string{".yaml", ".yml"} {
		if l.dir != "" {
			data, err := os.ReadFile(filepath.Join(l.dir, name+ext))
			if err == nil {
				return parseTemplate(name, data)
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read template '%s': %w", name, err)
			}
		}

		data, err := builtinTemplates.ReadFile("templates/" + name + ext)
		if err == nil {
			return parseTemplate(name, data)
		}
	}

	return nil, fmt.Errorf("%w: '%s'", ErrTemplateNotFound, name)
}

func parseTemplate(name string, data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", name, err)
	}
	if tmpl.Prompt == "" {
		return nil, fmt.Errorf("template '%s' has no prompt", name)
	}
	tmpl.Name = name
	return &tmpl, nil
}

// DefaultTemplateDir mirrors the llm tool's template location:
// $LLM_USER_PATH/templates, else <user config dir>/io.datasette.llm/templates.
func DefaultTemplateDir(llmUserPath string) string {
	if llmUserPath != "" {
		return filepath.Join(llmUserPath, "templates")
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "io.datasette.llm", "templates")
}
