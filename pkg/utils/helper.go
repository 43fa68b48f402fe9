package utils

// FindDuplicate returns the first value that appears more than once, or ""
// when all values are distinct.
func FindDuplicate(values []string) string {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v
		}
		seen[v] = struct{}{}
	}
	return ""
}
