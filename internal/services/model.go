package services

import "time"

// Category groups services for the catalog view.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Service is a bookable salon service. Prices are in ARS pesos.
// Images holds gallery URLs; the first one is the primary image.
type Service struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	Price               float64   `json:"price"`
	DurationMin         int       `json:"durationMin"`
	Deposit             float64   `json:"deposit"`
	RemovalPriceOwn     float64   `json:"removalPriceOwn"`
	RemovalPriceForeign float64   `json:"removalPriceForeign"`
	Images              []string  `json:"images"`
	CategoryID          string    `json:"categoryId"`
	Category            *Category `json:"category,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// PrimaryImage returns the main gallery image, or "" when there is none.
func (s *Service) PrimaryImage() string {
	if len(s.Images) == 0 {
		return ""
	}
	return s.Images[0]
}
