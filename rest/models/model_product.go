package models

// ProductCreate defines the payload for creating a product under an
// attraction.
type ProductCreate struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"required,max=500"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	InStock     *bool    `json:"inStock,omitempty"`
}

// ProductUpdate carries the patchable subset of product fields.
type ProductUpdate struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=100"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	InStock     *bool    `json:"inStock,omitempty"`
}
