// Package marketplace reads the plugin catalog of a source bundle.
//
// Two layouts of plugins.yaml are accepted:
//
//	marketplaces:
//	  claude-plugins-official:
//	    source: https://github.com/anthropics/claude-plugins-official.git
//	    plugins:
//	      - typescript-lsp # TypeScript language server
//
// and the older form keyed by repository URL:
//
//	https://github.com/anthropics/claude-plugins-official.git:
//	  - typescript-lsp
package marketplace

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Plugin is one catalog entry.
type Plugin struct {
	Name        string
	Marketplace string // marketplace name, e.g. "claude-plugins-official"
	Source      string // marketplace source URL
	Comment     string
}

// Key returns the install reference "name@marketplace".
func (p Plugin) Key() string {
	return p.Name + "@" + p.Marketplace
}

// ShortRepo abbreviates a GitHub source URL to "org/repo".
//
//	https://github.com/anthropics/claude-plugins-official.git → anthropics/claude-plugins-official
func (p Plugin) ShortRepo() string {
	s := strings.TrimSuffix(strings.TrimSuffix(p.Source, "/"), ".git")
	if idx := strings.LastIndex(s, "github.com/"); idx >= 0 {
		return s[idx+len("github.com/"):]
	}
	if idx := strings.LastIndex(s, "github.com:"); idx >= 0 {
		return s[idx+len("github.com:"):]
	}
	return p.Source
}

// NameFromURL derives a marketplace name from its repository URL: the last
// path segment without ".git".
func NameFromURL(url string) string {
	s := strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git")
	if idx := strings.LastIndexAny(s, "/:"); idx >= 0 {
		s = s[idx+1:]
	}
	if s == "" {
		return "unknown"
	}
	return s
}

// LoadCatalog reads plugins.yaml. A missing file is an empty catalog.
func LoadCatalog(path string) ([]Plugin, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading plugin catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses plugins.yaml content in either layout, preserving
// document order. Malformed entries are skipped.
func ParseCatalog(data []byte) ([]Plugin, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing plugin catalog: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil
	}

	if markets := mappingValue(root, "marketplaces"); markets != nil {
		return parseMarketplaces(markets), nil
	}

	var plugins []Plugin
	for i := 0; i+1 < len(root.Content); i += 2 {
		url := root.Content[i].Value
		if !isRepoURL(url) {
			continue
		}
		plugins = append(plugins, parseEntries(root.Content[i+1], NameFromURL(url), url)...)
	}
	return plugins, nil
}

func parseMarketplaces(markets *yaml.Node) []Plugin {
	if markets.Kind != yaml.MappingNode {
		return nil
	}
	var plugins []Plugin
	for i := 0; i+1 < len(markets.Content); i += 2 {
		name := strings.TrimSpace(markets.Content[i].Value)
		body := markets.Content[i+1]
		if name == "" || body.Kind != yaml.MappingNode {
			continue
		}
		source := ""
		if s := mappingValue(body, "source"); s != nil && s.Kind == yaml.ScalarNode {
			source = strings.TrimSpace(s.Value)
		}
		if list := mappingValue(body, "plugins"); list != nil {
			plugins = append(plugins, parseEntries(list, name, source)...)
		}
	}
	return plugins
}

func parseEntries(list *yaml.Node, marketplace, source string) []Plugin {
	if list.Kind != yaml.SequenceNode {
		return nil
	}
	var plugins []Plugin
	for _, item := range list.Content {
		if item.Kind != yaml.ScalarNode {
			continue
		}
		name, comment := splitEntry(item.Value)
		if comment == "" {
			comment = strings.TrimSpace(strings.TrimPrefix(item.LineComment, "#"))
		}
		if name == "" {
			continue
		}
		plugins = append(plugins, Plugin{
			Name:        name,
			Marketplace: marketplace,
			Source:      source,
			Comment:     comment,
		})
	}
	return plugins
}

// splitEntry splits "name # comment".
func splitEntry(s string) (name, comment string) {
	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
	}
	return strings.TrimSpace(s), ""
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func isRepoURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "git@")
}
