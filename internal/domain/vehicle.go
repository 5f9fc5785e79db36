package domain

// VehicleCategory groups vehicles in the catalog
type VehicleCategory string

const (
	CategoryCity        VehicleCategory = "city"
	CategoryBerlina     VehicleCategory = "berlina"
	CategorySUV         VehicleCategory = "suv"
	CategorySportiva    VehicleCategory = "sportiva"
	CategoryCommerciale VehicleCategory = "commerciale"
	CategoryMoto        VehicleCategory = "moto"
)

// FuelType of a vehicle
type FuelType string

const (
	FuelBenzina   FuelType = "benzina"
	FuelDiesel    FuelType = "diesel"
	FuelElettrico FuelType = "elettrico"
	FuelIbrido    FuelType = "ibrido"
	FuelPlugIn    FuelType = "plug-in"
)

// Promo is an optional marketing badge on a vehicle
type Promo struct {
	Active bool   `json:"active"`
	Label  string `json:"label"`
	Sconto int    `json:"sconto,omitempty"`
}

// Vehicle is a read-only catalog entry
type Vehicle struct {
	ID             string          `json:"id"`
	Slug           string          `json:"slug"`
	Marca          string          `json:"marca"`
	Modello        string          `json:"modello"`
	Versione       string          `json:"versione"`
	Categoria      VehicleCategory `json:"categoria"`
	Fuel           FuelType        `json:"fuel"`
	Immagini       []string        `json:"immagini"`
	CanoneBase     int64           `json:"canone_base"`
	AnticipoMinimo int             `json:"anticipo_minimo"`
	AnticipoZero   bool            `json:"anticipo_zero"`
	KmAnno         []int           `json:"km_anno"`
	Potenza        int             `json:"potenza"`
	Cilindrata     int             `json:"cilindrata"`
	Cambio         string          `json:"cambio"`
	Posti          int             `json:"posti"`
	Porte          int             `json:"porte"`
	Bagagliaio     int             `json:"bagagliaio"`
	EmissioniCO2   int             `json:"emissioni_co2"`
	ConsumoMedio   float64         `json:"consumo_medio"`
	Disponibile    bool            `json:"disponibile"`
	InEvidenza     bool            `json:"in_evidenza"`
	Descrizione    string          `json:"descrizione,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	Promo          *Promo          `json:"promo,omitempty"`
}

// FirstImage returns the cover image or an empty string
func (v *Vehicle) FirstImage() string {
	if len(v.Immagini) == 0 {
		return ""
	}
	return v.Immagini[0]
}

// AllowsKm reports whether the annual mileage is listed for the vehicle
func (v *Vehicle) AllowsKm(km int) bool {
	for _, k := range v.KmAnno {
		if k == km {
			return true
		}
	}
	return false
}

// DisplayName is "<marca> <modello>"
func (v *Vehicle) DisplayName() string {
	return v.Marca + " " + v.Modello
}

// VehicleFilters narrows a catalog search. Nil pointers mean "no filter".
type VehicleFilters struct {
	Marca        []string          `json:"marca,omitempty"`
	Categoria    []VehicleCategory `json:"categoria,omitempty"`
	Fuel         []FuelType        `json:"fuel,omitempty"`
	AnticipoZero *bool             `json:"anticipo_zero,omitempty"`
	CanoneMin    *int64            `json:"canone_min,omitempty"`
	CanoneMax    *int64            `json:"canone_max,omitempty"`
	Disponibile  *bool             `json:"disponibile,omitempty"`
	InEvidenza   *bool             `json:"in_evidenza,omitempty"`
	Search       string            `json:"search,omitempty"`
}

// VehicleSort is a supported catalog ordering
type VehicleSort string

const (
	SortCanoneAsc   VehicleSort = "canone_asc"
	SortCanoneDesc  VehicleSort = "canone_desc"
	SortMarcaAsc    VehicleSort = "marca_asc"
	SortPotenzaDesc VehicleSort = "potenza_desc"
)

// VehicleSearchParams is a paginated catalog query
type VehicleSearchParams struct {
	Filters VehicleFilters
	Sort    VehicleSort
	Page    int
	Limit   int
}

// Normalize applies default paging (page 1, 12 per page)
func (p *VehicleSearchParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 12
	}
}

// VehicleSearchResult is one page of catalog results
type VehicleSearchResult struct {
	Vehicles   []Vehicle `json:"vehicles"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	TotalPages int       `json:"total_pages"`
}
