package roster

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/stagecrew/onboard-engine/internal/models"
)

// Loader manages the group catalog: the set of departments and roles
// that solve requests may reference, with their default capacities.
// Catalogs are YAML files, one group per document.
type Loader struct {
	mu     sync.RWMutex
	groups map[string]*models.Group
}

// NewLoader creates an empty group catalog loader
func NewLoader() *Loader {
	return &Loader{
		groups: make(map[string]*models.Group),
	}
}

// LoadFromDir loads all YAML group files from a directory
func (l *Loader) LoadFromDir(dir string) error {
	slog.Info("loading group catalog from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := l.LoadFromFile(file); err != nil {
			slog.Warn("failed to load group file", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("group catalog loaded", "count", loaded, "total_files", len(files))
	return nil
}

// groupFile is the YAML shape of one catalog file
type groupFile struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Capacity    int    `yaml:"capacity"`
}

// LoadFromFile loads a single group from a YAML file
func (l *Loader) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var gf groupFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if gf.ID == "" {
		return fmt.Errorf("group id is required")
	}
	if gf.Capacity < 0 {
		return fmt.Errorf("group %q has negative capacity %d", gf.ID, gf.Capacity)
	}

	group := &models.Group{
		ID:          gf.ID,
		Name:        gf.Name,
		Description: gf.Description,
		Capacity:    gf.Capacity,
	}
	if group.Name == "" {
		group.Name = group.ID
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.groups[group.ID] = group

	return nil
}

// Get returns a group by id, or nil when the catalog has no such group
func (l *Loader) Get(id string) *models.Group {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.groups[id]
}

// List returns all catalog groups in ascending id order
func (l *Loader) List() []*models.Group {
	l.mu.RLock()
	defer l.mu.RUnlock()

	groups := make([]*models.Group, 0, len(l.groups))
	for _, g := range l.groups {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

// IDs returns all catalog group ids in ascending order
func (l *Loader) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.groups))
	for id := range l.groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of catalog groups
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.groups)
}
