package jsonwriter

import "strconv"

// formatFloat renders f with exactly 6 decimal digits of precision, the
// floor spec.md §6 requires ("at least 6"). Fixed-point, never scientific
// notation, so every emitted number parses identically in any JSON reader.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}
