// Package paging converts 1-indexed (page, limit) pairs into SQL offsets.
package paging

import "math"

// Fits reports whether the offset of page is representable as an int.
func Fits(page, limit int) bool {
	return page > 0 && limit > 0 && page-1 <= math.MaxInt/limit
}

func Offset(page, limit int) int {
	return (page - 1) * limit
}

// TotalPages is ceil(total/limit). Callers guarantee limit > 0.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
