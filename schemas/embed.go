// Package schemas holds the JSON Schema for career catalog files and the
// default catalog shipped with the binary.
package schemas

import _ "embed"

// CatalogSchema validates career catalog documents
//
//go:embed career_catalog.schema.json
var CatalogSchema []byte

// DefaultCatalog is the catalog seeded when no file is given
//
//go:embed default_catalog.json
var DefaultCatalog []byte
