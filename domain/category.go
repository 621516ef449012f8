package domain

// CatalogFacets feeds the category and location pickers of the customer search form.
type CatalogFacets struct {
	Categories []string
	Locations  []string
}
