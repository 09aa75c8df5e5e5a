package domain

import "fmt"

// Layer identifies one ring of the layered architecture.
type Layer string

const (
	LayerEntities     Layer = "entities"
	LayerRepositories Layer = "repositories"
	LayerUseCases     Layer = "use_cases"
	LayerControllers  Layer = "controllers"
	LayerServices     Layer = "services"
)

// Layers returns every layer in configuration order.
func Layers() []Layer {
	return []Layer{LayerEntities, LayerRepositories, LayerUseCases, LayerControllers, LayerServices}
}

// ParseLayer converts a configuration key into a Layer.
// Returns an error wrapping ErrValidation for unknown names.
func ParseLayer(s string) (Layer, error) {
	l := Layer(s)
	if !l.IsValid() {
		return "", fmt.Errorf("%w: unknown layer %q", ErrValidation, s)
	}
	return l, nil
}

// IsValid returns true if the layer is one of the defined constants.
func (l Layer) IsValid() bool {
	switch l {
	case LayerEntities, LayerRepositories, LayerUseCases, LayerControllers, LayerServices:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (l Layer) String() string {
	return string(l)
}

// Title returns the directory and namespace segment used for the layer
// (e.g. "UseCases" for use_cases).
func (l Layer) Title() string {
	switch l {
	case LayerEntities:
		return "Entities"
	case LayerRepositories:
		return "Repositories"
	case LayerUseCases:
		return "UseCases"
	case LayerControllers:
		return "Controllers"
	case LayerServices:
		return "Services"
	default:
		return ""
	}
}

// MarkerInterface returns the short name of the marker interface that every
// class of the layer is tagged with.
func (l Layer) MarkerInterface() string {
	switch l {
	case LayerEntities:
		return "EntityInterface"
	case LayerRepositories:
		return "RepositoryInterface"
	case LayerUseCases:
		return "UseCaseInterface"
	case LayerControllers:
		return "ControllerInterface"
	case LayerServices:
		return "ServiceInterface"
	default:
		return ""
	}
}

// StubName returns the scaffolding template name for the layer.
func (l Layer) StubName() string {
	switch l {
	case LayerEntities:
		return "entity"
	case LayerRepositories:
		return "repository"
	case LayerUseCases:
		return "use_case"
	case LayerControllers:
		return "controller"
	case LayerServices:
		return "service"
	default:
		return ""
	}
}

// LayerSpec is the resolved location of a layer in the target project.
// Unconfigured layers carry empty strings.
type LayerSpec struct {
	Layer     Layer
	Path      string
	Namespace string
}

// Configured reports whether both the path and the namespace are known.
func (s LayerSpec) Configured() bool {
	return s.Path != "" && s.Namespace != ""
}
