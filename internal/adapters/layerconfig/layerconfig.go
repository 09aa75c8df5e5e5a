// Package layerconfig resolves where each architectural layer lives from the
// project's php-clean-architecture.yaml file.
//
// The file holds a list whose entries carry a "levels" list of single-key
// maps:
//
//	php-clean-architecture:
//	  - levels:
//	      - entities:
//	          path: src/Entities
//	          namespace: Src\Entities
//
// Resolution never fails: a missing file, a malformed file, or a missing
// entry leaves the affected layers unconfigured (empty path and namespace).
package layerconfig

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jsamuelsen11/cleanarch/internal/domain"
	"github.com/jsamuelsen11/cleanarch/internal/ports"
)

// RootKey is the top-level key of the layer configuration file.
const RootKey = "php-clean-architecture"

// DefaultFile is the conventional file name, relative to the project root.
const DefaultFile = "php-clean-architecture.yaml"

// Compile-time check that Resolver implements ports.LayerResolver.
var _ ports.LayerResolver = (*Resolver)(nil)

type document struct {
	Entries []entry `koanf:"php-clean-architecture"`
}

type entry struct {
	Levels []map[string]level `koanf:"levels"`
}

type level struct {
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
}

// Resolver answers layer lookups from a loaded configuration. It is
// immutable after Load and safe for concurrent use.
type Resolver struct {
	source string
	found  bool
	specs  map[domain.Layer]domain.LayerSpec
}

// Load reads the configuration at path. Problems reading or parsing the file
// are logged at WARN and yield a resolver with every layer unconfigured.
func Load(path string, logger *slog.Logger) *Resolver {
	r := &Resolver{source: path, specs: make(map[domain.Layer]domain.LayerSpec)}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("layer configuration unreadable",
				slog.String("operation", "layerconfig.Load"),
				slog.String("path", path),
				slog.Any("error", err),
			)
		}
		return r
	}
	r.found = true

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		logger.Warn("layer configuration could not be parsed, layers left unconfigured",
			slog.String("operation", "layerconfig.Load"),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return r
	}

	var doc document
	if err := k.Unmarshal("", &doc); err != nil {
		logger.Warn("layer configuration has an unexpected shape, layers left unconfigured",
			slog.String("operation", "layerconfig.Load"),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return r
	}

	r.specs = fromDocument(doc)
	return r
}

// New builds a resolver from explicit specs. Unknown layers are ignored.
func New(specs ...domain.LayerSpec) *Resolver {
	r := &Resolver{found: true, specs: make(map[domain.Layer]domain.LayerSpec, len(specs))}
	for _, s := range specs {
		if s.Layer.IsValid() {
			r.specs[s.Layer] = s
		}
	}
	return r
}

// fromDocument picks, for each layer, the first levels entry that names it.
func fromDocument(doc document) map[domain.Layer]domain.LayerSpec {
	specs := make(map[domain.Layer]domain.LayerSpec)
	for _, e := range doc.Entries {
		for _, lv := range e.Levels {
			for key, val := range lv {
				layer, err := domain.ParseLayer(key)
				if err != nil {
					continue
				}
				if _, seen := specs[layer]; seen {
					continue
				}
				specs[layer] = domain.LayerSpec{
					Layer:     layer,
					Path:      strings.TrimSpace(val.Path),
					Namespace: strings.Trim(strings.TrimSpace(val.Namespace), `\`),
				}
			}
		}
	}
	return specs
}

// Resolve returns the spec of one layer; unconfigured layers have empty
// Path and Namespace.
func (r *Resolver) Resolve(layer domain.Layer) domain.LayerSpec {
	if s, ok := r.specs[layer]; ok {
		return s
	}
	return domain.LayerSpec{Layer: layer}
}

// All returns every layer in canonical order.
func (r *Resolver) All() []domain.LayerSpec {
	layers := domain.Layers()
	out := make([]domain.LayerSpec, len(layers))
	for i, l := range layers {
		out[i] = r.Resolve(l)
	}
	return out
}

// Source returns the path the resolver was loaded from.
func (r *Resolver) Source() string { return r.source }

// Found reports whether the configuration file existed when loaded.
func (r *Resolver) Found() bool { return r.found }
