package util

import "strconv"

// ParseInt parses s as an int, returning defaultValue on empty or invalid input
func ParseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return v
}

// ParsePagination extracts limit/offset query values with bounds applied
func ParsePagination(limitStr, offsetStr string, maxLimit int) (limit, offset int) {
	limit = ParseInt(limitStr, 20)
	if limit < 1 {
		limit = 1
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = ParseInt(offsetStr, 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
