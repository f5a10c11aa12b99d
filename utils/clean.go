package utils

import (
	"regexp"
	"strings"
)

var unsafeNameRegexp = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1F]`)

func CleanFileName(input string) string {
	cleaned := unsafeNameRegexp.ReplaceAllString(input, "_")

	cleaned = strings.TrimSpace(cleaned)

	return cleaned
}

// ExportFileName derives the output name from the exported book titles.
func ExportFileName(titles []string) string {
	var parts []string
	for _, t := range titles {
		if c := CleanFileName(t); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return "export.pdf"
	}

	name := strings.Join(parts, " + ")
	if r := []rune(name); len(r) > 120 {
		name = strings.TrimSpace(string(r[:120]))
	}
	return name + ".pdf"
}
