package domain

import "time"

// CatalogService is a bookable service. The catalog is static configuration;
// appointments store the service name as free text.
type CatalogService struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	PriceCents int64         `json:"price_cents"`
	Currency   string        `json:"currency"`
	Duration   time.Duration `json:"-"`
}

// Catalog is an ordered list of services.
type Catalog []CatalogService

// DefaultCatalog returns the services offered by the salon.
func DefaultCatalog() Catalog {
	return Catalog{
		{ID: 1, Name: "Corte de Cabelo", PriceCents: 5000, Currency: "BRL", Duration: 45 * time.Minute},
		{ID: 2, Name: "Barba & Bigode", PriceCents: 3500, Currency: "BRL", Duration: 30 * time.Minute},
		{ID: 3, Name: "Limpeza de Pele", PriceCents: 8000, Currency: "BRL", Duration: 60 * time.Minute},
		{ID: 4, Name: "Massagem Relaxante", PriceCents: 12000, Currency: "BRL", Duration: 50 * time.Minute},
	}
}

// Find returns the service with the given name.
func (c Catalog) Find(name string) (CatalogService, bool) {
	for _, s := range c {
		if s.Name == name {
			return s, true
		}
	}
	return CatalogService{}, false
}
