package stores

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/openfroyo/inventory/pkg/engine"
)

// Template is a CloudFormation-template-shaped inventory document.
// It is not a deployable template: logical IDs are raw identifiers and
// read-only properties are kept.
type Template struct {
	Resources map[string]TemplateResource `json:"Resources"`
}

// TemplateResource is one resource of a Template. Fields are declared in
// key order so the encoding is sorted at every level.
type TemplateResource struct {
	Metadata   map[string]any      `json:"Metadata"`
	Properties engine.Properties   `json:"Properties"`
	Type       engine.ResourceType `json:"Type"`
}

// NewTemplate builds the document of a type. Extra metadata is added to the
// Metadata of every resource next to its identifier.
func NewTemplate(t engine.ResourceType, instances []engine.ResourceInstance, metadata map[string]any) *Template {
	doc := &Template{Resources: make(map[string]TemplateResource, len(instances))}
	for _, inst := range instances {
		meta := maps.Clone(metadata)
		if meta == nil {
			meta = make(map[string]any, 1)
		}
		meta["Identifier"] = inst.Identifier

		props := inst.Properties
		if props == nil {
			props = engine.Properties{}
		}
		doc.Resources[inst.Identifier] = TemplateResource{
			Metadata:   meta,
			Properties: props,
			Type:       t,
		}
	}
	return doc
}

// Encode returns the JSON encoding with sorted keys and a two space indent.
func (d *Template) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}
	return append(data, '\n'), nil
}

// documentAction is what a document sink does with a result.
type documentAction int

const (
	actionNone documentAction = iota
	actionWrite
	actionRemove
)

// actionFor decides how a document sink handles a result. Skipped and failed
// types leave any previous document untouched; an empty inventory removes it.
func actionFor(result *engine.TypeResult) documentAction {
	switch result.Status {
	case engine.TypeStatusEnumerated, engine.TypeStatusDisabled:
		if len(result.Instances) == 0 {
			return actionRemove
		}
		return actionWrite
	default:
		return actionNone
	}
}
