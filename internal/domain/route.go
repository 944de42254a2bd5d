package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Route - маршрут доставки с упорядоченным списком точек
type Route struct {
	ID               uuid.UUID `json:"id"`
	ManagementCodeID uuid.UUID `json:"management_code_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Destinations []*Destination `json:"destinations,omitempty"`
}

// Destination - точка маршрута
type Destination struct {
	ID           uuid.UUID `json:"id"`
	RouteID      uuid.UUID `json:"route_id"`
	Name         string    `json:"name"`
	Address      string    `json:"address,omitempty"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SortDestinations упорядочивает точки по DisplayOrder, при равенстве по имени
func SortDestinations(items []*Destination) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].DisplayOrder != items[j].DisplayOrder {
			return items[i].DisplayOrder < items[j].DisplayOrder
		}
		return items[i].Name < items[j].Name
	})
}

// Validate проверяет корректность данных маршрута
func (r *Route) Validate() error {
	if r.ManagementCodeID == uuid.Nil {
		return ErrManagementScopeRequired
	}
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
	r.Name = strings.TrimSpace(r.Name)
	if r.Code == "" || len(r.Code) > 32 || r.Name == "" {
		return ErrInvalidRouteData
	}
	return nil
}

// Validate проверяет корректность данных точки маршрута
func (d *Destination) Validate() error {
	d.Name = strings.TrimSpace(d.Name)
	if d.RouteID == uuid.Nil || d.Name == "" || d.DisplayOrder < 0 {
		return ErrInvalidDestinationData
	}
	return nil
}
