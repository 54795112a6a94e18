// Package frontmatter reads the YAML header of markdown artifacts.
package frontmatter

import (
	"strings"

	"go.yaml.in/yaml/v3"
)

// Meta is the subset of frontmatter fields shown in listings.
type Meta struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Parse extracts name and description from YAML frontmatter in markdown
// content. Frontmatter is delimited by --- lines at the start of the file.
// Headers that are not valid YAML (unquoted colons in a description are
// common) fall back to a line-by-line key scan.
func Parse(content string) Meta {
	block, ok := split(content)
	if !ok {
		return Meta{}
	}

	var m Meta
	if err := yaml.Unmarshal([]byte(block), &m); err == nil {
		m.Name = strings.TrimSpace(m.Name)
		m.Description = strings.TrimSpace(m.Description)
		return m
	}

	m = Meta{}
	for _, line := range strings.Split(block, "\n") {
		if k, v, ok := parseLine(strings.TrimSpace(line)); ok {
			switch k {
			case "name":
				m.Name = v
			case "description":
				m.Description = v
			}
		}
	}
	return m
}

// Description is shorthand for Parse(content).Description.
func Description(content string) string {
	return Parse(content).Description
}

func split(content string) (string, bool) {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---") {
		return "", false
	}
	rest := content[3:]
	idx := strings.IndexByte(rest, '\n')
	if idx < 0 {
		return "", false
	}
	rest = rest[idx+1:]

	if strings.HasPrefix(rest, "---") {
		return "", true
	}
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

func parseLine(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return key, value, true
}
