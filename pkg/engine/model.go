package engine

import (
	"fmt"
	"strings"

	"github.com/jmespath/go-jmespath"
)

// BuildModel constructs the partial input model of a child from one parent instance.
//
// Every mapping entry evaluates its Parent expression (JMESPath) against the
// parent's properties and nests the value under the dot separated Child path.
// Entries are merged at the top level. A parent expression that resolves to
// nothing is a configuration error: mappings are only declared for properties the
// parent type always populates.
func BuildModel(parent Properties, mapping []PropertyMapping) (Model, error) {
	model := make(Model, len(mapping))

	for _, m := range mapping {
		if m.Child == "" || m.Parent == "" {
			return nil, NewConfigurationError("property mapping has an empty path", nil).
				WithCode(ErrCodeInvalidMapping).
				WithDetail("child", m.Child).
				WithDetail("parent", m.Parent)
		}

		value, err := jmespath.Search(m.Parent, map[string]any(parent))
		if err != nil {
			return nil, NewConfigurationError(fmt.Sprintf("invalid parent property path %q", m.Parent), err).
				WithCode(ErrCodeInvalidMapping)
		}
		if value == nil {
			return nil, NewConfigurationError(
				fmt.Sprintf("parent property %q resolved to nothing", m.Parent), nil,
			).WithCode(ErrCodeMappingUnresolved).WithDetail("child", m.Child)
		}

		segments := strings.Split(m.Child, ".")
		nested := value
		for i := len(segments) - 1; i > 0; i-- {
			nested = map[string]any{segments[i]: nested}
		}
		model[segments[0]] = nested
	}

	return model, nil
}
