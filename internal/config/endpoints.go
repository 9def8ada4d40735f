package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LocalEndpoint selects the in-process document store as a fetch candidate.
const LocalEndpoint = "local"

// DocumentEndpoint describes one place a session's document context can be fetched from.
type DocumentEndpoint struct {
	Name    string        `yaml:"name"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

func (e DocumentEndpoint) IsLocal() bool {
	return strings.EqualFold(e.URL, LocalEndpoint)
}

type endpointsFile struct {
	Endpoints []DocumentEndpoint `yaml:"endpoints"`
}

// ParseEndpointList turns "local,http://a:5001,http://b:5001" into descriptors, keeping order.
func ParseEndpointList(value string, timeout time.Duration) []DocumentEndpoint {
	var endpoints []DocumentEndpoint
	for _, raw := range splitList(value) {
		endpoints = append(endpoints, DocumentEndpoint{
			Name:    raw,
			URL:     strings.TrimRight(raw, "/"),
			Timeout: timeout,
		})
	}
	return endpoints
}

// LoadEndpointsFile reads ordered endpoint descriptors from YAML:
//
//	endpoints:
//	  - name: upload-primary
//	    url: http://localhost:5001
//	    timeout: 2s
func LoadEndpointsFile(path string, defaultTimeout time.Duration) ([]DocumentEndpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoints file: %w", err)
	}

	var file endpointsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse endpoints file: %w", err)
	}

	endpoints := make([]DocumentEndpoint, 0, len(file.Endpoints))
	for i, ep := range file.Endpoints {
		ep.URL = strings.TrimRight(strings.TrimSpace(ep.URL), "/")
		if ep.URL == "" {
			return nil, fmt.Errorf("endpoint %d has no url", i)
		}
		if ep.Name == "" {
			ep.Name = ep.URL
		}
		if ep.Timeout <= 0 {
			ep.Timeout = defaultTimeout
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}
