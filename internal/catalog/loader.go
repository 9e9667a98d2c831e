package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"memberportal/internal/model"

	"gopkg.in/yaml.v3"
)

// Registry holds the loaded catalogs, keyed by id. Read-only after load.
type Registry struct {
	catalogs map[string]*model.Catalog
}

// Get returns the catalog with the given id, or nil.
func (r *Registry) Get(id string) *model.Catalog {
	return r.catalogs[id]
}

// IDs returns the loaded catalog ids, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.catalogs))
	for id := range r.catalogs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Load parses one catalog file and validates what can be checked
// structurally. Dangling skip references are deliberately not an error:
// they evaluate to "no answer" at runtime and silently disable the skip.
func Load(path string) (*model.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	var cat model.Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	if err := validate(&cat); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &cat, nil
}

// LoadDir loads every .yaml/.yml file in dir into a registry.
func LoadDir(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}
	reg := &Registry{catalogs: make(map[string]*model.Catalog)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		cat, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, exists := reg.catalogs[cat.ID]; exists {
			return nil, fmt.Errorf("duplicate catalog id %q", cat.ID)
		}
		reg.catalogs[cat.ID] = cat
	}
	return reg, nil
}

var validKinds = map[model.QuestionKind]bool{
	model.KindSection:      true,
	model.KindText:         true,
	model.KindTextarea:     true,
	model.KindSingleChoice: true,
	model.KindMultiChoice:  true,
	model.KindDropdown:     true,
}

var validDeriveModes = map[model.DeriveMode]bool{
	model.DeriveCopy:             true,
	model.DeriveFirstOfSelection: true,
	model.DeriveValueIfIncludes:  true,
}

func validate(cat *model.Catalog) error {
	if cat.ID == "" {
		return fmt.Errorf("catalog id is required")
	}
	seen := make(map[string]bool, len(cat.Questions))
	for i := range cat.Questions {
		q := &cat.Questions[i]
		if q.ID == "" {
			return fmt.Errorf("question %d has no id", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = true
		if !validKinds[q.Kind] {
			return fmt.Errorf("question %q has unknown kind %q", q.ID, q.Kind)
		}
		if q.Skip != nil {
			switch q.Skip.Mode {
			case model.SkipEquals, model.SkipNotEquals:
			default:
				return fmt.Errorf("question %q has unknown skip mode %q", q.ID, q.Skip.Mode)
			}
		}
		for _, rule := range q.VirtualRules {
			if !validDeriveModes[rule.Mode] {
				return fmt.Errorf("question %q has unknown derive mode %q", q.ID, rule.Mode)
			}
		}
	}
	return nil
}
