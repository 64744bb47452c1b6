package utils

// ClaimStrings normalizes a list-valued JWT claim. Issuers send either a JSON array
// or, for a single value, a bare string. Non-string array elements are dropped.
// A missing claim yields nil.
func ClaimStrings(claim any) []string {
	switch v := claim.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		stringSlice := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				stringSlice = append(stringSlice, s)
			}
		}
		return stringSlice
	default:
		return nil
	}
}
