package catalog

import (
	"testing"

	"github.com/MrSnakeDoc/sourcedit/internal/domain"
)

func TestMapperMapCatalog(t *testing.T) {
	file := File{
		SourceTypes: []SourceTypeEntry{
			{ID: "1", Name: "openshift"},
			{ID: "", Name: "missing-id"},
			{ID: "1", Name: "duplicate"},
		},
		ApplicationTypes: []ApplicationTypeEntry{
			{ID: "2", Name: domain.CostManagementAppName, DisplayName: "Cost Management"},
			{ID: "3", Name: ""},
			{ID: "4", Name: "catalog", SupportedSourceTypes: []string{"openshift", ""}},
		},
	}

	catalog, skipped, err := NewMapper().MapCatalog(file)
	if err != nil {
		t.Fatalf("MapCatalog() error = %v", err)
	}

	if len(catalog.SourceTypes) != 1 || catalog.SourceTypes[0].Name != "openshift" {
		t.Errorf("MapCatalog() source types = %+v, want only openshift", catalog.SourceTypes)
	}
	if len(catalog.ApplicationTypes) != 1 {
		t.Fatalf("MapCatalog() application types = %+v, want 1", catalog.ApplicationTypes)
	}
	if _, ok := domain.FindApplicationTypeByName(catalog.ApplicationTypes, domain.CostManagementAppName); !ok {
		t.Error("MapCatalog() lost the cost management type")
	}
	if len(skipped) != 4 {
		t.Errorf("MapCatalog() skipped %v entries, want 4: %+v", len(skipped), skipped)
	}
}

func TestMapperMapCatalogEmpty(t *testing.T) {
	_, _, err := NewMapper().MapCatalog(File{})

	// Empty catalog should return an error
	if err == nil {
		t.Error("MapCatalog() with empty catalog should return error")
	}
}

func TestMapperMapCatalogOnlyInvalid(t *testing.T) {
	file := File{SourceTypes: []SourceTypeEntry{{Name: "no-id"}}}

	_, skipped, err := NewMapper().MapCatalog(file)
	if err == nil {
		t.Error("MapCatalog() with only invalid entries should return error")
	}
	if len(skipped) != 1 {
		t.Errorf("MapCatalog() skipped %v entries, want 1", len(skipped))
	}
}
