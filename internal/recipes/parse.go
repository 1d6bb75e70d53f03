package recipes

import (
	"strings"
)

// ParseResponse parses a model response in format: name | description
// One recipe per line.
func ParseResponse(raw string) []Recipe {
	lines := strings.Split(raw, "\n")
	recipes := make([]Recipe, 0)

	for _, line := range lines {
		if r := ParseLine(line); r != nil {
			recipes = append(recipes, *r)
		}
	}

	return recipes
}

// ParseLine parses a single "name | description" line. It returns nil for
// blank lines, preamble, and lines without a name.
func ParseLine(line string) *Recipe {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	// Skip common headers or non-recipe lines
	if strings.HasPrefix(line, "Here") || strings.HasPrefix(line, "Sure") || strings.HasPrefix(line, "Based on") {
		return nil
	}

	line = strings.TrimLeft(line, "-*• ")
	name, desc, _ := strings.Cut(line, "|")
	r := &Recipe{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(desc),
	}
	if r.Name == "" {
		return nil
	}
	return r
}
