package http

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"product-api/internal/model"
	"product-api/internal/service"
)

// parseListQuery reads category, inStock, minPrice, maxPrice, page and
// limit. Empty values mean "not set", except inStock which filters as
// soon as the key is present.
func parseListQuery(q url.Values) (model.ListFilter, int, int) {
	var filter model.ListFilter

	if category := q.Get("category"); category != "" {
		filter.Category = &category
	}
	if q.Has("inStock") {
		inStock := q.Get("inStock") == "true"
		filter.InStock = &inStock
	}
	if v := q.Get("minPrice"); v != "" {
		minPrice := parseNumber(v)
		filter.MinPrice = &minPrice
	}
	if v := q.Get("maxPrice"); v != "" {
		maxPrice := parseNumber(v)
		filter.MaxPrice = &maxPrice
	}

	page := parseIntPrefix(q.Get("page"), service.DefaultPage)
	limit := parseIntPrefix(q.Get("limit"), service.DefaultLimit)
	return filter, page, limit
}

// parseNumber returns NaN for unparseable input so that bound checks
// never match.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// parseIntPrefix reads the leading integer of s ("12abc" is 12). Input
// with no leading digits yields def. Overflow saturates.
func parseIntPrefix(s string, def int) int {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return def
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if neg {
			return math.MinInt
		}
		return math.MaxInt
	}
	if neg {
		return -n
	}
	return n
}
