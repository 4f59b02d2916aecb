package domain

// CostManagementAppName is the application type name whose paused
// applications get a "paused" message instead of an availability error.
const CostManagementAppName = "/insights/platform/cost-management"

// SourceType describes a kind of source (openshift, amazon, ...).
type SourceType struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	ProductName string `json:"product_name,omitempty" yaml:"product_name,omitempty"`
}

// ApplicationType describes a kind of application that can be attached
// to a source.
type ApplicationType struct {
	ID                   string   `json:"id" yaml:"id"`
	Name                 string   `json:"name" yaml:"name"`
	DisplayName          string   `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	SupportedSourceTypes []string `json:"supported_source_types,omitempty" yaml:"supported_source_types,omitempty"`
}

// FindApplicationTypeByName returns the application type with the given name.
func FindApplicationTypeByName(types []ApplicationType, name string) (ApplicationType, bool) {
	for _, t := range types {
		if t.Name == name {
			return t, true
		}
	}
	return ApplicationType{}, false
}

// FindSourceTypeName resolves a source type id to its name.
// Unknown ids resolve to an empty string.
func FindSourceTypeName(types []SourceType, id string) string {
	for _, t := range types {
		if t.ID == id {
			return t.Name
		}
	}
	return ""
}

// Catalog is the full set of known source and application types.
type Catalog struct {
	SourceTypes      []SourceType      `json:"source_types" yaml:"source_types"`
	ApplicationTypes []ApplicationType `json:"application_types" yaml:"application_types"`
}
