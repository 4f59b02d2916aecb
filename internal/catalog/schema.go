package catalog

// File represents the top-level structure of the catalog YAML
type File struct {
	SourceTypes      []SourceTypeEntry      `yaml:"source_types"`
	ApplicationTypes []ApplicationTypeEntry `yaml:"application_types"`
}

// SourceTypeEntry is one source type as written in the catalog
type SourceTypeEntry struct {
	ID          string `yaml:"id" validate:"required"`
	Name        string `yaml:"name" validate:"required"`
	ProductName string `yaml:"product_name,omitempty"`
}

// ApplicationTypeEntry is one application type as written in the catalog
type ApplicationTypeEntry struct {
	ID                   string   `yaml:"id" validate:"required"`
	Name                 string   `yaml:"name" validate:"required"`
	DisplayName          string   `yaml:"display_name,omitempty"`
	SupportedSourceTypes []string `yaml:"supported_source_types,omitempty" validate:"dive,required"`
}
