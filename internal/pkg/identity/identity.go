// Package identity normalizes user identifiers before comparison. Upstream
// identity providers have been observed to return the same user id with
// different casing or stray whitespace, which silently defeated actor
// exclusion in the past; every id comparison in the notification pipeline
// goes through this package.
package identity

import "strings"

// Normalize trims surrounding whitespace and folds case.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Same reports whether two identifiers refer to the same user after
// normalization. Two empty identifiers are not the same user.
func Same(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" && nb == "" {
		return false
	}
	return na == nb
}
