package storage

import (
	"sort"
	"strings"

	"rentfunnel/internal/domain"
)

const DefaultFeaturedLimit = 8

// MatchVehicle reports whether v satisfies every set filter
func MatchVehicle(v *domain.Vehicle, f domain.VehicleFilters) bool {
	if len(f.Marca) > 0 && !containsFold(f.Marca, v.Marca) {
		return false
	}
	if len(f.Categoria) > 0 && !contains(f.Categoria, v.Categoria) {
		return false
	}
	if len(f.Fuel) > 0 && !contains(f.Fuel, v.Fuel) {
		return false
	}
	if f.AnticipoZero != nil && v.AnticipoZero != *f.AnticipoZero {
		return false
	}
	if f.CanoneMin != nil && v.CanoneBase < *f.CanoneMin {
		return false
	}
	if f.CanoneMax != nil && v.CanoneBase > *f.CanoneMax {
		return false
	}
	if f.Disponibile != nil && v.Disponibile != *f.Disponibile {
		return false
	}
	if f.InEvidenza != nil && v.InEvidenza != *f.InEvidenza {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		hay := strings.ToLower(v.Marca + " " + v.Modello + " " + v.Versione)
		if !strings.Contains(hay, q) {
			return false
		}
	}
	return true
}

// SortVehicles orders vehicles in place. Unknown sorts keep catalogue order.
func SortVehicles(vehicles []domain.Vehicle, by domain.VehicleSort) {
	switch by {
	case domain.SortCanoneAsc:
		sort.SliceStable(vehicles, func(i, j int) bool { return vehicles[i].CanoneBase < vehicles[j].CanoneBase })
	case domain.SortCanoneDesc:
		sort.SliceStable(vehicles, func(i, j int) bool { return vehicles[i].CanoneBase > vehicles[j].CanoneBase })
	case domain.SortMarcaAsc:
		sort.SliceStable(vehicles, func(i, j int) bool {
			return strings.ToLower(vehicles[i].Marca) < strings.ToLower(vehicles[j].Marca)
		})
	case domain.SortPotenzaDesc:
		sort.SliceStable(vehicles, func(i, j int) bool { return vehicles[i].Potenza > vehicles[j].Potenza })
	}
}

// Paginate cuts one page out of an already filtered and sorted slice
func Paginate(vehicles []domain.Vehicle, page, limit int) *domain.VehicleSearchResult {
	total := len(vehicles)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return &domain.VehicleSearchResult{
		Vehicles:   vehicles[start:end],
		Total:      total,
		Page:       page,
		TotalPages: TotalPages(total, limit),
	}
}

func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
