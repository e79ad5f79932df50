package repository

import "strings"

// likePattern builds a case-insensitive substring pattern for use with
// LOWER(col) LIKE ?. Works on both postgres and sqlite.
func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
