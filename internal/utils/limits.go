// Package utils provides small, generic helper functions used across
// different layers of the library. These utilities are independent of
// domain or business logic.
package utils

// ClampLimit normalizes a caller-supplied list limit. Non-positive values
// fall back to def; values above max are capped so a single request cannot
// ask the backend for an unbounded page.
//
// Example:
//
//	n := utils.ClampLimit(0, 10, 100)   // returns 10
//	n = utils.ClampLimit(25, 10, 100)   // returns 25
//	n = utils.ClampLimit(500, 10, 100)  // returns 100
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
