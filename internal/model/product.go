package model

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
}

// ProductInput is a normalized create/update payload. A nil field was
// either absent or falsy and must not overwrite stored values.
type ProductInput struct {
	Name        *string
	Description *string
	Price       *float64
	Category    *string
	InStock     *bool
}

// ListFilter holds the optional narrowing passes for a product listing.
// Nil means the filter is not applied.
type ListFilter struct {
	Category *string
	InStock  *bool
	MinPrice *float64
	MaxPrice *float64
}

type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	ItemsPerPage int  `json:"itemsPerPage"`
	TotalItems   int  `json:"totalItems"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

type ProductPage struct {
	Items      []Product
	Pagination Pagination
}

type Stats struct {
	TotalProducts int            `json:"totalProducts"`
	InStock       int            `json:"inStock"`
	OutOfStock    int            `json:"outOfStock"`
	AveragePrice  int64          `json:"averagePrice"`
	Categories    map[string]int `json:"categories"`
}

// SeedProducts is the fixed set the collection starts with.
func SeedProducts() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "SketchPad",
			Description: "Fine quality paper with 50, 140gsm sheets",
			Price:       400,
			Category:    "books",
			InStock:     true,
		},
		{
			ID:          "2",
			Name:        "Mechanical Pencil",
			Description: "Metallic with a case of free 0.5 hb leds",
			Price:       800,
			Category:    "pencils",
			InStock:     false,
		},
		{
			ID:          "3",
			Name:        "Retractable blade",
			Description: "Has blades that can be discarder",
			Price:       250,
			Category:    "tool",
			InStock:     true,
		},
		{
			ID:          "4",
			Name:        "Charcoal",
			Description: "Give the darkest shades of black",
			Price:       180,
			Category:    "pencils",
			InStock:     false,
		},
	}
}
