package entities

// Product is a record owned by the external catalog service. Orders only
// reference products by id, product data is never stored locally.
type Product struct {
	ID    string
	Name  string
	Price float64
}

// IndexProducts builds an id keyed lookup over a catalog response.
func IndexProducts(products []Product) map[string]Product {
	idx := make(map[string]Product, len(products))
	for _, p := range products {
		idx[p.ID] = p
	}
	return idx
}
