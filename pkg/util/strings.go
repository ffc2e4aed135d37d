package util

import "strings"

func RemoveDuplicateStrings(values []string, ignoreList []string) []string {
	presentStrings := make(map[string]bool)
	var list []string

	for _, ignoreString := range ignoreList {
		presentStrings[ignoreString] = true
	}

	for _, item := range values {
		if _, value := presentStrings[item]; !value && item != "" {
			presentStrings[item] = true
			list = append(list, item)
		}
	}
	return list
}

// Capitalize upper-cases the first letter and turns dashes into spaces, used
// for fallback mode display names ("cable-car" -> "Cable car").
func Capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + strings.ReplaceAll(s[1:], "-", " ")
}
