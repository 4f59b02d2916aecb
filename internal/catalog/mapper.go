package catalog

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
)

// Mapper converts catalog entries to domain types
type Mapper struct {
	validate *validator.Validate
}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{
		validate: validator.New(),
	}
}

// Skipped is an entry dropped during mapping
type Skipped struct {
	Kind   string
	Index  int
	Reason string
}

// MapCatalog converts a catalog file to a domain.Catalog.
// Invalid entries and duplicate ids are skipped and reported.
func (m *Mapper) MapCatalog(file File) (domain.Catalog, []Skipped, error) {
	var (
		catalog domain.Catalog
		skipped []Skipped
	)

	seenSource := make(map[string]bool, len(file.SourceTypes))
	for i, entry := range file.SourceTypes {
		if err := m.validate.Struct(entry); err != nil {
			skipped = append(skipped, Skipped{Kind: "source_type", Index: i, Reason: err.Error()})
			continue
		}
		if seenSource[entry.ID] {
			skipped = append(skipped, Skipped{Kind: "source_type", Index: i, Reason: "duplicate id " + entry.ID})
			continue
		}
		seenSource[entry.ID] = true
		catalog.SourceTypes = append(catalog.SourceTypes, domain.SourceType{
			ID:          entry.ID,
			Name:        entry.Name,
			ProductName: entry.ProductName,
		})
	}

	seenApp := make(map[string]bool, len(file.ApplicationTypes))
	for i, entry := range file.ApplicationTypes {
		if err := m.validate.Struct(entry); err != nil {
			skipped = append(skipped, Skipped{Kind: "application_type", Index: i, Reason: err.Error()})
			continue
		}
		if seenApp[entry.ID] {
			skipped = append(skipped, Skipped{Kind: "application_type", Index: i, Reason: "duplicate id " + entry.ID})
			continue
		}
		seenApp[entry.ID] = true
		catalog.ApplicationTypes = append(catalog.ApplicationTypes, domain.ApplicationType{
			ID:                   entry.ID,
			Name:                 entry.Name,
			DisplayName:          entry.DisplayName,
			SupportedSourceTypes: entry.SupportedSourceTypes,
		})
	}

	if len(catalog.SourceTypes) == 0 && len(catalog.ApplicationTypes) == 0 {
		return domain.Catalog{}, skipped, fmt.Errorf("no valid types found in catalog")
	}

	return catalog, skipped, nil
}
