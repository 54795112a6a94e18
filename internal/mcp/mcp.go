// Package mcp reads the MCP server catalog of a source bundle.
package mcp

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"
)

// Transport types.
const (
	TypeStdio = "stdio"
	TypeHTTP  = "http"
)

// Server is one catalog entry of mcps.yaml.
type Server struct {
	Name        string   `yaml:"-"`
	Description string   `yaml:"description"`
	Category    string   `yaml:"category"`
	Type        string   `yaml:"type"`
	Command     string   `yaml:"command"`
	URL         string   `yaml:"url"`
	Env         []string `yaml:"env"`
}

// IsHTTP reports whether the server is reached over HTTP.
func (s Server) IsHTTP() bool {
	return s.Type == TypeHTTP
}

// Args splits the stdio command line on whitespace.
func (s Server) Args() []string {
	return strings.Fields(s.Command)
}

// LoadCatalog reads mcps.yaml. A missing file is an empty catalog.
func LoadCatalog(path string) ([]Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading MCP catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses mcps.yaml:
//
//	servers:
//	  context7:
//	    description: Library docs
//	    type: stdio
//	    command: npx -y @upstash/context7-mcp
//	    env: [CONTEXT7_API_KEY]
//
// Entries are returned in document order; entries that do not decode or
// lack a command (stdio) or URL (http) are skipped.
func ParseCatalog(data []byte) ([]Server, error) {
	var doc struct {
		Servers yaml.Node `yaml:"servers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing MCP catalog: %w", err)
	}
	if doc.Servers.Kind != yaml.MappingNode {
		return nil, nil
	}

	var servers []Server
	content := doc.Servers.Content
	for i := 0; i+1 < len(content); i += 2 {
		var s Server
		if err := content[i+1].Decode(&s); err != nil {
			continue
		}
		s.Name = strings.TrimSpace(content[i].Value)
		if s.Type == "" {
			s.Type = TypeStdio
			if s.URL != "" && s.Command == "" {
				s.Type = TypeHTTP
			}
		}
		if !s.valid() {
			continue
		}
		servers = append(servers, s)
	}
	return servers, nil
}

func (s Server) valid() bool {
	if s.Name == "" {
		return false
	}
	switch s.Type {
	case TypeStdio:
		return len(s.Args()) > 0
	case TypeHTTP:
		return s.URL != ""
	default:
		return false
	}
}

// LoadEnvDefaults reads a dotenv file. A missing file yields no defaults.
func LoadEnvDefaults(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// EnvValue is one resolved environment variable.
type EnvValue struct {
	Key   string
	Value string
}

// String renders KEY=value.
func (e EnvValue) String() string {
	return e.Key + "=" + e.Value
}

// ResolveEnv looks up each variable the server declares, first in defaults
// and then through lookup. It returns the resolved values and the names
// still missing, both in declaration order.
func ResolveEnv(s Server, defaults map[string]string, lookup func(string) (string, bool)) (resolved []EnvValue, missing []string) {
	for _, key := range s.Env {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if v, ok := defaults[key]; ok && v != "" {
			resolved = append(resolved, EnvValue{Key: key, Value: v})
			continue
		}
		if lookup != nil {
			if v, ok := lookup(key); ok && v != "" {
				resolved = append(resolved, EnvValue{Key: key, Value: v})
				continue
			}
		}
		missing = append(missing, key)
	}
	return resolved, missing
}
