package product

import (
	"strconv"
	"strings"
)

// Matches reports whether p satisfies the search query: a
// case-insensitive substring of the name or description, the exact
// product id, or a number equal to the price. It is a pure predicate;
// callers derive the match count from the filtered result.
func Matches(p Product, query string) bool {
	q := strings.ToLower(query)

	if strings.Contains(strings.ToLower(p.Name), q) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	if p.ID == query {
		return true
	}
	if n, err := strconv.ParseFloat(query, 64); err == nil && n == p.Price {
		return true
	}
	return false
}

// Filter returns the products matching query, preserving order. An empty
// query matches everything.
func Filter(products []Product, query string) []Product {
	if query == "" {
		return products
	}

	matched := make([]Product, 0, len(products))
	for _, p := range products {
		if Matches(p, query) {
			matched = append(matched, p)
		}
	}
	return matched
}
