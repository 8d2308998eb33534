/*
factory.go - Catalog presets as JSON

These functions render catalogs in the file format read by the factory
package. They build JSON directly so rewards does not import factory.

USAGE:
  jsonStr := rewards.DefaultCatalogJSON()
  cat, err := factory.NewCatalogFactory().ParseCatalog([]byte(jsonStr), factory.FormatJSON)
*/
package rewards

import "encoding/json"

// CatalogJSON renders a catalog as catalog-file JSON.
func CatalogJSON(c Catalog) string {
	doc := map[string]interface{}{
		"subjects":   c.Subjects,
		"deductions": c.Deductions,
		"bonuses":    c.Bonuses,
	}
	b, _ := json.MarshalIndent(doc, "", "  ")
	return string(b)
}

// DefaultCatalogJSON returns the built-in catalog as catalog-file JSON.
func DefaultCatalogJSON() string {
	return CatalogJSON(DefaultCatalog())
}
