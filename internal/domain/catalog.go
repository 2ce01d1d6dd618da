package domain

import "regexp"

var catalogIDRe = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// IsCatalogID reports whether s has the shape of a catalog identifier
// (24 hexadecimal characters). Only the shape is checked.
func IsCatalogID(s string) bool {
	return catalogIDRe.MatchString(s)
}
