package catalog

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"rentfunnel/internal/domain"
)

const (
	defaultLimit  = 12
	maxLimit      = 100
	featuredLimit = 8
)

var sorts = map[string]domain.VehicleSort{
	"canone_asc":   domain.SortCanoneAsc,
	"canone_desc":  domain.SortCanoneDesc,
	"marca_asc":    domain.SortMarcaAsc,
	"potenza_desc": domain.SortPotenzaDesc,
}

// searchParams reads the catalog query string. Malformed numbers and
// unknown sorts are ignored rather than rejected.
func searchParams(c *gin.Context) domain.VehicleSearchParams {
	p := domain.VehicleSearchParams{Limit: defaultLimit}
	f := &p.Filters

	f.Marca = listQuery(c, "marca")
	for _, v := range listQuery(c, "categoria") {
		f.Categoria = append(f.Categoria, domain.VehicleCategory(strings.ToLower(v)))
	}
	for _, v := range listQuery(c, "fuel") {
		f.Fuel = append(f.Fuel, domain.FuelType(strings.ToLower(v)))
	}
	f.AnticipoZero = boolQuery(c, "anticipo_zero")
	f.Disponibile = boolQuery(c, "disponibile")
	f.InEvidenza = boolQuery(c, "in_evidenza")
	f.CanoneMin = intQuery(c, "canone_min")
	f.CanoneMax = intQuery(c, "canone_max")
	f.Search = strings.TrimSpace(c.Query("search"))

	if s, ok := sorts[c.Query("sort")]; ok {
		p.Sort = s
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		p.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && limit <= maxLimit {
		p.Limit = limit
	}
	p.Normalize()
	return p
}

// listQuery accepts ?k=a&k=b and ?k=a,b
func listQuery(c *gin.Context, key string) []string {
	var out []string
	for _, v := range c.QueryArray(key) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func boolQuery(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}

func intQuery(c *gin.Context, key string) *int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
