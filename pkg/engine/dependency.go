package engine

// Dependency describes how the inputs needed to enumerate a resource type are obtained.
// It is a closed set: NoDependency, ParentDependency, DynamicDependency,
// StaticDependency and FeatureGate.
type Dependency interface {
	// Kind returns the dependency kind.
	Kind() DependencyKind

	isDependency()
}

// DependencyKind names a dependency variant.
type DependencyKind string

const (
	// DependencyNone means the type can be listed without any input.
	DependencyNone DependencyKind = "none"

	// DependencyParent means one listing call is made per instance of a parent type.
	DependencyParent DependencyKind = "parent"

	// DependencyDynamic means the inputs come from a runtime capability.
	DependencyDynamic DependencyKind = "dynamic"

	// DependencyStatic means the inputs are a fixed list of literal values.
	DependencyStatic DependencyKind = "static"

	// DependencyFeatureGate means the type is listable only when a feature is enabled.
	DependencyFeatureGate DependencyKind = "feature_gate"
)

// PropertyMapping maps a parent property path onto a child model path.
type PropertyMapping struct {
	// Child is the dot separated path in the child's input model.
	Child string `json:"child"`

	// Parent is the JMESPath expression evaluated against the parent's properties.
	Parent string `json:"parent"`
}

// Map is shorthand for a single-entry mapping where child and parent share a name.
func Map(name string) []PropertyMapping {
	return []PropertyMapping{{Child: name, Parent: name}}
}

// NoDependency marks a type that is enumerable with no extra input.
type NoDependency struct{}

// Kind implements Dependency.
func (NoDependency) Kind() DependencyKind { return DependencyNone }

func (NoDependency) isDependency() {}

// ParentDependency requires one input model per instance of Parent.
type ParentDependency struct {
	Parent  ResourceType
	Mapping []PropertyMapping
}

// Kind implements Dependency.
func (ParentDependency) Kind() DependencyKind { return DependencyParent }

func (ParentDependency) isDependency() {}

// DynamicDependency obtains parent-like property bags from the named capability.
type DynamicDependency struct {
	Source  string
	Mapping []PropertyMapping
}

// Kind implements Dependency.
func (DynamicDependency) Kind() DependencyKind { return DependencyDynamic }

func (DynamicDependency) isDependency() {}

// StaticDependency enumerates once per literal value, placing the value under Key.
type StaticDependency struct {
	Key    string
	Values []string
}

// Kind implements Dependency.
func (StaticDependency) Kind() DependencyKind { return DependencyStatic }

func (StaticDependency) isDependency() {}

// bags turns the literal values into synthetic property bags.
func (d StaticDependency) bags() []Properties {
	out := make([]Properties, 0, len(d.Values))
	for _, v := range d.Values {
		out = append(out, Properties{d.Key: v})
	}
	return out
}

// FeatureGate enables enumeration only when the named check returns true.
type FeatureGate struct {
	Check string
}

// Kind implements Dependency.
func (FeatureGate) Kind() DependencyKind { return DependencyFeatureGate }

func (FeatureGate) isDependency() {}
