package config

import "github.com/iancoleman/strcase"

// NamingConvention maps between names used on the API surface and names used
// inside the document store.
type NamingConvention interface {
	// ToDocumentKey converts a query-string field name to the key it is
	// stored under inside a document.
	ToDocumentKey(name string) string

	// ToCollectionName converts a resource name to its collection name.
	ToCollectionName(name string) string
}

type defaultNaming struct {
}

func NewDefaultNaming() NamingConvention {
	return &defaultNaming{}
}

// Documents are stored with lowerCamel keys regardless of how the client
// spells the field in the query string.
func (n *defaultNaming) ToDocumentKey(name string) string {
	return strcase.ToLowerCamel(name)
}

func (n *defaultNaming) ToCollectionName(name string) string {
	return strcase.ToSnake(name)
}
