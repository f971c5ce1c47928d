// Package projection turns stored rows into the JSON shapes served by the
// public API. Everything here is pure: callers load the rows, projection
// filters, orders and resolves image keys to URLs.
package projection

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"pbbcms/internal/models"
)

// Resolver maps a stored image value to a public URL.
// *storage.Client implements it, including a nil client.
type Resolver interface {
	Resolve(value string) string
}

func resolve(r Resolver, value string) string {
	if r == nil {
		return value
	}
	return r.Resolve(value)
}

// ServiceDetail is one gallery image of a subcategory.
type ServiceDetail struct {
	ID        uuid.UUID `json:"id"`
	Image     string    `json:"image"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

// Subcategory is an active subcategory with its gallery inlined.
type Subcategory struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	ServiceDetails []ServiceDetail `json:"service_details"`
}

// MainCategory is an active main category with its active subcategories.
type MainCategory struct {
	ID              uuid.UUID     `json:"id"`
	Name            string        `json:"name"`
	IsActive        bool          `json:"is_active"`
	CreatedAt       time.Time     `json:"created_at"`
	SubCategoryList []Subcategory `json:"sub_category_list"`
}

// ServiceDetailsResponse is the body of the service-details lookup.
type ServiceDetailsResponse struct {
	SubCategoryID   uuid.UUID       `json:"sub_category_id"`
	SubCategoryName string          `json:"sub_category_name"`
	ServiceDetails  []ServiceDetail `json:"service_details"`
}

// MainCategories builds the category listing. children maps a main category
// id to its subcategories and details maps a category id to its gallery.
// Inactive rows are dropped at both levels whatever the loader returned.
func MainCategories(roots []models.Category, children map[uuid.UUID][]models.Category, details map[uuid.UUID][]models.ServiceDetail, r Resolver) []MainCategory {
	out := make([]MainCategory, 0, len(roots))
	for _, root := range roots {
		if !root.IsActive || root.IsSubcategory() {
			continue
		}

		subs := make([]Subcategory, 0, len(children[root.ID]))
		for _, child := range children[root.ID] {
			if !child.IsActive {
				continue
			}
			subs = append(subs, Subcategory{
				ID:             child.ID,
				Name:           child.Name,
				IsActive:       child.IsActive,
				CreatedAt:      child.CreatedAt,
				ServiceDetails: ServiceDetails(details[child.ID], r),
			})
		}

		out = append(out, MainCategory{
			ID:              root.ID,
			Name:            root.Name,
			IsActive:        root.IsActive,
			CreatedAt:       root.CreatedAt,
			SubCategoryList: subs,
		})
	}
	return out
}

// ServiceDetails orders a gallery by (order, created_at) and resolves images.
func ServiceDetails(items []models.ServiceDetail, r Resolver) []ServiceDetail {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b models.ServiceDetail) int {
		switch {
		case a.Less(&b):
			return -1
		case b.Less(&a):
			return 1
		}
		return 0
	})

	out := make([]ServiceDetail, 0, len(sorted))
	for _, d := range sorted {
		out = append(out, ServiceDetail{
			ID:        d.ID,
			Image:     resolve(r, d.Image),
			Order:     d.Order,
			CreatedAt: d.CreatedAt,
		})
	}
	return out
}

// SubcategoryDetails builds the service-details lookup body.
func SubcategoryDetails(sub *models.Category, items []models.ServiceDetail, r Resolver) ServiceDetailsResponse {
	return ServiceDetailsResponse{
		SubCategoryID:   sub.ID,
		SubCategoryName: sub.Name,
		ServiceDetails:  ServiceDetails(items, r),
	}
}
