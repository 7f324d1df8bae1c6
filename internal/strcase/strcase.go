// Package strcase holds the name conversions the generator needs:
// operation identifiers are lowerCamelCase, untagged struct fields map
// to snake_case properties.
package strcase

import "unicode"

// ToCamelCase lowers the first character of an exported identifier.
func ToCamelCase(name string) string {
	if name == "" {
		return name
	}

	first := name[0]
	if first >= 'A' && first <= 'Z' {
		return string(first+32) + name[1:]
	}
	return name
}

// ToSnakeCase converts a Go identifier to snake_case, keeping acronym
// runs together: URLValue becomes url_value, UserID becomes user_id.
func ToSnakeCase(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	var result []rune

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := false
				if i < len(runes)-1 {
					nextLower = unicode.IsLower(runes[i+1])
				}

				if unicode.IsLower(prev) || nextLower {
					result = append(result, '_')
				}
			}
			r = unicode.ToLower(r)
		}

		result = append(result, r)
	}

	return string(result)
}
