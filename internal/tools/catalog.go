package tools

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog holds optional per-tool overrides loaded from a YAML file.
// Operators use it to sharpen tool descriptions for their model or to
// adjust output caps without rebuilding.
type Catalog struct {
	Tools []CatalogEntry `yaml:"tools"`
}

// CatalogEntry overrides presentation attributes of one registered tool.
type CatalogEntry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	MaxOutput   int    `yaml:"max_output,omitempty"`
}

// LoadCatalog reads a tool catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse tool catalog: %w", err)
	}
	return &catalog, nil
}

// Wrap applies the catalog entry for the tool's name, if any.
func (c *Catalog) Wrap(t Tool) Tool {
	for _, entry := range c.Tools {
		if entry.Name == t.Name() {
			return &overriddenTool{Tool: t, entry: entry}
		}
	}
	return t
}

type overriddenTool struct {
	Tool
	entry CatalogEntry
}

func (o *overriddenTool) Description() string {
	if o.entry.Description != "" {
		return o.entry.Description
	}
	return o.Tool.Description()
}

func (o *overriddenTool) MaxOutput() int {
	if o.entry.MaxOutput > 0 {
		return o.entry.MaxOutput
	}
	return o.Tool.MaxOutput()
}

// BuildRegistry assembles the default pod toolset, applying catalog
// overrides when catalogPath is non-empty.
func BuildRegistry(runner Runner, logTail int, catalogPath string) (*Registry, error) {
	var catalog *Catalog
	if catalogPath != "" {
		c, err := LoadCatalog(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("load tool catalog: %w", err)
		}
		catalog = c
	}

	registry := NewRegistry()
	for _, t := range PodTools(runner, logTail) {
		if catalog != nil {
			t = catalog.Wrap(t)
		}
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
