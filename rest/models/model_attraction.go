package models

// Attraction is the typed view of an attraction document, used where
// handlers need field access (radius math, ownership checks).
type Attraction struct {
	ID          string   `json:"id" mapstructure:"id"`
	Name        string   `json:"name" mapstructure:"name"`
	Slug        string   `json:"slug" mapstructure:"slug"`
	Description string   `json:"description" mapstructure:"description"`
	Website     string   `json:"website,omitempty" mapstructure:"website"`
	Phone       string   `json:"phone,omitempty" mapstructure:"phone"`
	Email       string   `json:"email,omitempty" mapstructure:"email"`
	Address     string   `json:"address" mapstructure:"address"`
	Latitude    float64  `json:"latitude" mapstructure:"latitude"`
	Longitude   float64  `json:"longitude" mapstructure:"longitude"`
	Categories  []string `json:"categories" mapstructure:"categories"`
	EntryFee    float64  `json:"entryFee,omitempty" mapstructure:"entryFee"`
	Photo       string   `json:"photo,omitempty" mapstructure:"photo"`
	User        string   `json:"user" mapstructure:"user"`
	CreatedAt   string   `json:"createdAt" mapstructure:"createdAt"`
}

// AttractionCreate defines the payload for creating an attraction
type AttractionCreate struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description" validate:"required,max=500"`
	Website     string   `json:"website,omitempty" validate:"omitempty,url"`
	Phone       string   `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email       string   `json:"email,omitempty" validate:"omitempty,email"`
	Address     string   `json:"address" validate:"required"`
	Latitude    *float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
	Categories  []string `json:"categories" validate:"required,min=1,dive,oneof=museum park landmark gallery zoo aquarium theme-park historic-site viewpoint other"`
	EntryFee    *float64 `json:"entryFee,omitempty" validate:"omitempty,gte=0"`
}

// AttractionUpdate carries the patchable subset of attraction fields; nil
// pointers leave the stored value untouched.
type AttractionUpdate struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=50"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=500"`
	Website     *string  `json:"website,omitempty" validate:"omitempty,url"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=20"`
	Email       *string  `json:"email,omitempty" validate:"omitempty,email"`
	Address     *string  `json:"address,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Categories  []string `json:"categories,omitempty" validate:"omitempty,min=1,dive,oneof=museum park landmark gallery zoo aquarium theme-park historic-site viewpoint other"`
	EntryFee    *float64 `json:"entryFee,omitempty" validate:"omitempty,gte=0"`
}
