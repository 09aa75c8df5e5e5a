package layerconfig

import (
	"fmt"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
)

// Defaults returns the specs install writes for a project whose sources
// live under baseFolder, e.g. "src" gives src/Entities and Src\Entities.
func Defaults(baseFolder string) []domain.LayerSpec {
	baseFolder = strings.Trim(baseFolder, "/")
	root := upperFirst(baseFolder)

	layers := domain.Layers()
	specs := make([]domain.LayerSpec, len(layers))
	for i, l := range layers {
		specs[i] = domain.LayerSpec{
			Layer:     l,
			Path:      path.Join(baseFolder, l.Title()),
			Namespace: root + `\` + l.Title(),
		}
	}
	return specs
}

type yamlLevel struct {
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

type yamlEntry struct {
	Levels []map[string]yamlLevel `yaml:"levels"`
}

type yamlDocument struct {
	Entries []yamlEntry `yaml:"php-clean-architecture"`
}

// Marshal encodes specs in the layer configuration file format, one levels
// entry per layer in the given order.
func Marshal(specs []domain.LayerSpec) ([]byte, error) {
	entry := yamlEntry{Levels: make([]map[string]yamlLevel, 0, len(specs))}
	for _, s := range specs {
		if !s.Layer.IsValid() {
			return nil, fmt.Errorf("marshalling layer %q: %w", s.Layer, domain.ErrValidation)
		}
		entry.Levels = append(entry.Levels, map[string]yamlLevel{
			s.Layer.String(): {Path: s.Path, Namespace: s.Namespace},
		})
	}

	out, err := yaml.Marshal(yamlDocument{Entries: []yamlEntry{entry}})
	if err != nil {
		return nil, fmt.Errorf("marshalling layer configuration: %w", err)
	}
	return out, nil
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
