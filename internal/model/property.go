package model

import "time"

const (
	PropertyTypeResidential = "Residential"
	PropertyTypeCommercial  = "Commercial"
	PropertyTypeLand        = "Land"
	PropertyTypeIndustrial  = "Industrial"
)

const (
	StatusAvailable = "Available"
	StatusSold      = "Sold"
	StatusPending   = "Pending"
)

// DefaultImageURL is used when a property is created without an upload or URL.
const DefaultImageURL = "https://images.unsplash.com/photo-1560518883-ce09059eeffa?q=80&w=1000&auto=format&fit=crop"

// Property represents one listed real-estate unit
type Property struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Location  string    `json:"location" db:"location"`
	Price     string    `json:"price" db:"price"` // Free-form, e.g. "1.5 Cr"
	Type      string    `json:"type" db:"type"`
	Beds      int       `json:"beds" db:"beds"`
	Baths     int       `json:"baths" db:"baths"`
	Area      string    `json:"area" db:"area"` // Free-form, e.g. "2400 sqft"
	Image     string    `json:"image" db:"image"`
	Status    string    `json:"status" db:"status"`
	City      *string   `json:"city" db:"city"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PropertyInput carries the admin-submitted fields for create and update.
// Bound from either a multipart form or a JSON body.
type PropertyInput struct {
	Title    string `json:"title" form:"title" binding:"required"`
	Location string `json:"location" form:"location" binding:"required"`
	Price    string `json:"price" form:"price" binding:"required"`
	Type     string `json:"type" form:"type" binding:"required,oneof=Residential Commercial Land Industrial"`
	Beds     int    `json:"beds" form:"beds" binding:"min=0"`
	Baths    int    `json:"baths" form:"baths" binding:"min=0"`
	Area     string `json:"area" form:"area" binding:"required"`
	Status   string `json:"status" form:"status" binding:"omitempty,oneof=Available Sold Pending"`
	City     string `json:"city" form:"city"`
	ImageURL string `json:"imageUrl" form:"imageUrl" binding:"omitempty,url"`
}

// IsValidType reports whether t is one of the closed property categories.
func IsValidType(t string) bool {
	switch t {
	case PropertyTypeResidential, PropertyTypeCommercial, PropertyTypeLand, PropertyTypeIndustrial:
		return true
	}
	return false
}

// IsValidStatus reports whether s is one of the closed listing statuses.
func IsValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusSold, StatusPending:
		return true
	}
	return false
}
