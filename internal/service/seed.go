package service

import (
	"context"
	"fmt"

	"property_portal/internal/model"
)

func unsplash(photoID string) string {
	return "https://images.unsplash.com/photo-" + photoID + "?q=80&w=1000&auto=format&fit=crop"
}

var sampleProperties = []model.PropertyInput{
	{
		Title: "Luxury Villa with Garden", Location: "Arera Colony, Bhopal", Price: "1.5 Cr",
		Type: model.PropertyTypeResidential, Beds: 4, Baths: 3, Area: "2400 sqft",
		ImageURL: unsplash("1613490493576-7fde63acd811"), Status: model.StatusAvailable, City: "bhopal",
	},
	{
		Title: "Premium Commercial Space", Location: "MP Nagar, Bhopal", Price: "85 Lakh",
		Type: model.PropertyTypeCommercial, Beds: 0, Baths: 1, Area: "1200 sqft",
		ImageURL: unsplash("1497366216548-37526070297c"), Status: model.StatusAvailable, City: "bhopal",
	},
	{
		Title: "Modern Apartment", Location: "Civil Lines, Vidisha", Price: "35 Lakh",
		Type: model.PropertyTypeResidential, Beds: 2, Baths: 2, Area: "1100 sqft",
		ImageURL: unsplash("1560448204-e02f11c3d0e2"), Status: model.StatusSold, City: "vidisha",
	},
	{
		Title: "Agricultural Land", Location: "Sanchi Road, Raisen", Price: "45 Lakh",
		Type: model.PropertyTypeLand, Beds: 0, Baths: 0, Area: "2 Acres",
		ImageURL: unsplash("1500382017468-9049fed747ef"), Status: model.StatusAvailable, City: "raisen",
	},
}

// SeedDefaults inserts the sample listings when the table is empty and
// returns how many rows were added.
func (s *propertyService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i, input := range sampleProperties {
		if _, err := s.CreateProperty(ctx, input, nil); err != nil {
			return i, fmt.Errorf("failed to seed property %q: %w", input.Title, err)
		}
	}
	return len(sampleProperties), nil
}
