package posts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pb0420/trademonke/internal/domain"
)

type Handler struct {
	Log   *log.Logger
	Users domain.UsersRepo
	Plans domain.PlansRepo
	Posts domain.PostsRepo
	Cache domain.Cache

	ListTTL   time.Duration // feed pages, 2m
	DetailTTL time.Duration // single listing, 5m
}

func parsePostID(r *http.Request) (domain.PostID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return domain.PostID{}, domain.ErrBadParams
	}
	return id, nil
}

// filterFromQuery normalizes the public feed query parameters.
func filterFromQuery(r *http.Request) domain.PostFilter {
	q := r.URL.Query()
	f := domain.PostFilter{
		Search:     q.Get("search"),
		CategoryID: q.Get("category"),
		Location:   q.Get("location"),
		Sort:       domain.PostSort(q.Get("sort")),
		Page:       1,
		Limit:      20,
	}
	switch f.Sort {
	case domain.SortNewest, domain.SortPriceLow, domain.SortPriceHigh, domain.SortDistance:
	default:
		f.Sort = domain.SortNewest
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		f.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= 100 {
		f.Limit = n
	}
	if lat, err := strconv.ParseFloat(q.Get("lat"), 64); err == nil {
		if lon, err := strconv.ParseFloat(q.Get("lon"), 64); err == nil {
			f.Lat, f.Lon = &lat, &lon
			maxKm := 50.0
			if v, err := strconv.ParseFloat(q.Get("radius_km"), 64); err == nil && v > 0 {
				maxKm = v
			}
			f.MaxDistanceKm = &maxKm
		}
	}
	return f
}

// listCacheKey hashes the full normalized parameter set; two different
// queries must never collide on one slot.
func listCacheKey(f domain.PostFilter) string {
	lat, lon, rad := "", "", ""
	if f.Lat != nil {
		lat = strconv.FormatFloat(*f.Lat, 'f', 5, 64)
	}
	if f.Lon != nil {
		lon = strconv.FormatFloat(*f.Lon, 'f', 5, 64)
	}
	if f.MaxDistanceKm != nil {
		rad = strconv.FormatFloat(*f.MaxDistanceKm, 'f', 2, 64)
	}
	raw := fmt.Sprintf("s=%s|c=%s|l=%s|o=%s|p=%d|n=%d|lat=%s|lon=%s|r=%s",
		f.Search, f.CategoryID, f.Location, f.Sort, f.Page, f.Limit, lat, lon, rad)
	sum := sha256.Sum256([]byte(raw))
	return domain.CacheKeyPostsList(hex.EncodeToString(sum[:16]))
}
