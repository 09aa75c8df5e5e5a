package layerconfig

import (
	"fmt"
	"path"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// Compile-time check that Renderer implements ports.ConfigRenderer.
var _ ports.ConfigRenderer = Renderer{}

// Renderer encodes the files install writes.
type Renderer struct{}

// Defaults implements ports.ConfigRenderer.
func (Renderer) Defaults(baseFolder string) []domain.LayerSpec {
	return Defaults(baseFolder)
}

// LayerConfig implements ports.ConfigRenderer.
func (Renderer) LayerConfig(specs []domain.LayerSpec) ([]byte, error) {
	return Marshal(specs)
}

// Deptrac implements ports.ConfigRenderer.
func (Renderer) Deptrac(basePath string, specs []domain.LayerSpec) ([]byte, error) {
	return MarshalDeptrac(basePath, specs)
}

// allowedDependencies lists, per layer, the layers its classes may depend
// on. Dependencies point inwards towards the entities.
var allowedDependencies = map[domain.Layer][]domain.Layer{
	domain.LayerEntities:     {},
	domain.LayerRepositories: {domain.LayerEntities},
	domain.LayerServices:     {domain.LayerEntities, domain.LayerRepositories},
	domain.LayerUseCases:     {domain.LayerEntities, domain.LayerRepositories, domain.LayerServices},
	domain.LayerControllers:  {domain.LayerEntities, domain.LayerUseCases},
}

type deptracCollector struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

type deptracLayer struct {
	Name       string             `yaml:"name"`
	Collectors []deptracCollector `yaml:"collectors"`
}

type deptracConfig struct {
	Paths   []string            `yaml:"paths"`
	Layers  []deptracLayer      `yaml:"layers"`
	Ruleset map[string][]string `yaml:"ruleset"`
}

type deptracDocument struct {
	Deptrac deptracConfig `yaml:"deptrac"`
}

// MarshalDeptrac encodes a deptrac configuration for the configured specs.
// Rules only mention layers that are themselves configured.
func MarshalDeptrac(basePath string, specs []domain.LayerSpec) ([]byte, error) {
	configured := make(map[domain.Layer]bool, len(specs))
	for _, s := range specs {
		if !s.Layer.IsValid() {
			return nil, fmt.Errorf("marshalling deptrac layer %q: %w", s.Layer, domain.ErrValidation)
		}
		if s.Configured() {
			configured[s.Layer] = true
		}
	}

	cfg := deptracConfig{
		Paths:   []string{"./" + path.Clean(basePath)},
		Ruleset: make(map[string][]string),
	}

	for _, s := range specs {
		if !configured[s.Layer] {
			continue
		}

		cfg.Layers = append(cfg.Layers, deptracLayer{
			Name: s.Layer.Title(),
			Collectors: []deptracCollector{{
				Type:  "directory",
				Value: regexp.QuoteMeta(path.Clean(s.Path)) + "/.*",
			}},
		})

		allowed := []string{}
		for _, dep := range allowedDependencies[s.Layer] {
			if configured[dep] {
				allowed = append(allowed, dep.Title())
			}
		}
		cfg.Ruleset[s.Layer.Title()] = allowed
	}

	out, err := yaml.Marshal(deptracDocument{Deptrac: cfg})
	if err != nil {
		return nil, fmt.Errorf("marshalling deptrac configuration: %w", err)
	}
	return out, nil
}
