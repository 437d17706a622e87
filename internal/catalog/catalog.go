package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrBarberNotFound  = errors.New("barber not found")
	ErrServiceNotFound = errors.New("service not found")
)

type Barber struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Specialty  string  `json:"specialty"`
	Rating     float64 `json:"rating"`
	Image      string  `json:"image"`
	Experience string  `json:"experience"`
}

type Service struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration"`
	Price           float64 `json:"price"`
}

// Catalog is the read-only reference data the booking flow selects from.
// Lists keep declaration order and callers receive copies.
type Catalog struct {
	barbers  []Barber
	services []Service
}

// New builds a catalog and rejects duplicate ids or invalid services.
func New(barbers []Barber, services []Service) (*Catalog, error) {
	seen := make(map[string]struct{}, len(barbers))
	for _, b := range barbers {
		if b.ID == "" {
			return nil, errors.New("barber id is required")
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("duplicate barber id %q", b.ID)
		}
		seen[b.ID] = struct{}{}
	}

	seen = make(map[string]struct{}, len(services))
	for _, s := range services {
		if s.ID == "" {
			return nil, errors.New("service id is required")
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("duplicate service id %q", s.ID)
		}
		if s.DurationMinutes <= 0 {
			return nil, fmt.Errorf("service %q: duration must be positive", s.ID)
		}
		if s.Price < 0 {
			return nil, fmt.Errorf("service %q: price must not be negative", s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	return &Catalog{
		barbers:  append([]Barber(nil), barbers...),
		services: append([]Service(nil), services...),
	}, nil
}

// Default returns the shop's built-in catalog.
func Default() *Catalog {
	c, err := New(defaultBarbers, defaultServices)
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

func (c *Catalog) ListBarbers() []Barber {
	return append([]Barber(nil), c.barbers...)
}

func (c *Catalog) ListServices() []Service {
	return append([]Service(nil), c.services...)
}

func (c *Catalog) Barber(id string) (Barber, error) {
	for _, b := range c.barbers {
		if b.ID == id {
			return b, nil
		}
	}
	return Barber{}, ErrBarberNotFound
}

func (c *Catalog) Service(id string) (Service, error) {
	for _, s := range c.services {
		if s.ID == id {
			return s, nil
		}
	}
	return Service{}, ErrServiceNotFound
}
