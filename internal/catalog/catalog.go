// Package catalog holds the reference process catalogue the classifier
// matches requirements against. The catalogue is loaded once from an embedded
// YAML file and is immutable for the process lifetime.
package catalog

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed items.yaml
var itemsFS embed.FS

// Item is one reference process capability. Read-only; no lifecycle.
type Item struct {
	ID               string   `yaml:"id" json:"id"`
	Name             string   `yaml:"name" json:"name"`
	Category         string   `yaml:"category" json:"category"`
	Group            string   `yaml:"group" json:"group"`
	Description      string   `yaml:"description" json:"description"`
	MigrationObjects []string `yaml:"migration_objects" json:"migration_objects,omitempty"`
	Keywords         []string `yaml:"keywords" json:"keywords,omitempty"`
}

// Catalogue is the loaded reference catalogue.
type Catalogue struct {
	items []Item
	byID  map[string]Item
}

// Load parses the embedded catalogue. Called once at startup.
func Load() (*Catalogue, error) {
	data, err := itemsFS.ReadFile("items.yaml")
	if err != nil {
		return nil, err
	}
	var doc struct {
		Items []Item `yaml:"items"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if len(doc.Items) == 0 {
		return nil, fmt.Errorf("catalogue is empty")
	}
	byID := make(map[string]Item, len(doc.Items))
	for _, it := range doc.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("catalogue item %q has no id", it.Name)
		}
		if _, dup := byID[it.ID]; dup {
			return nil, fmt.Errorf("duplicate catalogue id %s", it.ID)
		}
		byID[it.ID] = it
	}
	return &Catalogue{items: doc.Items, byID: byID}, nil
}

// Items returns all catalogue items in file order.
func (c *Catalogue) Items() []Item { return c.items }

// Len returns the number of items.
func (c *Catalogue) Len() int { return len(c.items) }

// ByID looks up one item.
func (c *Catalogue) ByID(id string) (Item, bool) {
	it, ok := c.byID[id]
	return it, ok
}

// FilterCategory returns items whose category matches (case-insensitive exact
// match). An empty filter returns the whole catalogue.
func (c *Catalogue) FilterCategory(category string) []Item {
	if category == "" {
		return c.items
	}
	var out []Item
	for _, it := range c.items {
		if strings.EqualFold(it.Category, category) {
			out = append(out, it)
		}
	}
	return out
}

// PromptText renders items as a compact text block for an LLM prompt.
func PromptText(items []Item) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "[%s] %s (%s > %s)\n", it.ID, it.Name, it.Category, it.Group)
		fmt.Fprintf(&b, "  %s\n", it.Description)
		if len(it.MigrationObjects) > 0 {
			fmt.Fprintf(&b, "  Migration Objects: %s\n", strings.Join(it.MigrationObjects, ", "))
		}
	}
	return b.String()
}
