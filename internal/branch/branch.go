package branch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"julferiin-ops/internal/config"
)

// Branch is one business branch of the group and the areas it operates in.
type Branch struct {
	ID    int      `yaml:"id" json:"id"`
	Name  string   `yaml:"name" json:"name"`
	Areas []string `yaml:"areas" json:"areas"`
}

// Label is the short name used in director notifications.
func (b Branch) Label() string {
	if b.ID == 0 {
		return "JULFERIIN LTD"
	}
	return fmt.Sprintf("JULFERIIN LTD %d", b.ID)
}

// Directory is an ordered, read-only set of branches.
type Directory struct {
	branches []Branch
}

// NewDirectory builds a directory, rejecting duplicate ids.
func NewDirectory(branches []Branch) (*Directory, error) {
	seen := make(map[int]bool, len(branches))
	for _, b := range branches {
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate branch id %d", b.ID)
		}
		seen[b.ID] = true
	}
	return &Directory{branches: append([]Branch(nil), branches...)}, nil
}

// List returns all branches in declaration order.
func (d *Directory) List() []Branch {
	out := make([]Branch, len(d.branches))
	for i, b := range d.branches {
		b.Areas = append([]string(nil), b.Areas...)
		out[i] = b
	}
	return out
}

// Find looks a branch up by id.
func (d *Directory) Find(id int) (Branch, bool) {
	for _, b := range d.branches {
		if b.ID == id {
			return b, true
		}
	}
	return Branch{}, false
}

type file struct {
	Branches []Branch `yaml:"branches"`
}

// Load reads a YAML branch list from disk.
func Load(path string) (*Directory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read branches: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse branches: %w", err)
	}
	if len(f.Branches) == 0 {
		return nil, fmt.Errorf("parse branches: %s defines no branches", path)
	}
	return NewDirectory(f.Branches)
}

// FromConfig builds the directory from configuration, falling back to BuiltIn.
func FromConfig(cfg *config.Config) (*Directory, error) {
	if len(cfg.Branches) == 0 {
		return NewDirectory(BuiltIn())
	}
	branches := make([]Branch, len(cfg.Branches))
	for i, b := range cfg.Branches {
		branches[i] = Branch{ID: b.ID, Name: b.Name, Areas: b.Areas}
	}
	return NewDirectory(branches)
}
