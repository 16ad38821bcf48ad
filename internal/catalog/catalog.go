package catalog

import (
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/emersongin/cardbattle-service/internal/models"
)

// DeckSize is the number of cards a folder template expands to.
const DeckSize = 40

// folderNamePad is the width folder display names are padded to for
// selection menus.
const folderNamePad = 20

// Template is a catalog card definition. Instances are cloned from it.
type Template struct {
	ID                string          `yaml:"id"`
	Name              string          `yaml:"name"`
	Description       string          `yaml:"description"`
	Color             models.Color    `yaml:"color"`
	Kind              models.CardKind `yaml:"kind"`
	Attack            int             `yaml:"attack"`
	Health            int             `yaml:"health"`
	Cost              int             `yaml:"cost"`
	EffectKind        string          `yaml:"effect"`
	EffectDescription string          `yaml:"effectDescription"`
}

// Folder is a named deck template: DeckSize card instances drawn from
// the catalog at construction time. Choosing a folder clones the
// template into a fresh, independent deck.
type Folder struct {
	ID       string
	Name     string
	Template []*models.CardInstance
}

// FolderSummary is what a deck-selection menu needs to render a folder.
type FolderSummary struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"displayName"`
	ColorCounts map[models.Color]int `json:"colorCounts"`
	Total       int                  `json:"total"`
}

// Catalog is an immutable set of card templates plus the folders built
// from them. It is constructed once and injected into each match; there
// is no process-wide catalog state.
type Catalog struct {
	templates map[string]*Template
	order     []string
	folders   []*Folder
}

// catalogFile is the YAML layout for an external catalog.
type catalogFile struct {
	Cards   []*Template `yaml:"cards"`
	Folders []struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"folders"`
}

// New builds a catalog from the built-in card set with three folders,
// using rng to populate the folder templates.
func New(rng *rand.Rand) *Catalog {
	c := fromTemplates(builtinTemplates())
	c.addFolder("folder-1", "Royal Guard", rng)
	c.addFolder("folder-2", "Night Raid", rng)
	c.addFolder("folder-3", "Wildfire", rng)
	return c
}

// Load reads a YAML catalog file and builds its folders with rng.
func Load(path string, rng *rand.Rand) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if len(cf.Cards) == 0 {
		return nil, fmt.Errorf("catalog file %s defines no cards", path)
	}

	c := fromTemplates(cf.Cards)
	for _, f := range cf.Folders {
		c.addFolder(f.ID, f.Name, rng)
	}
	return c, nil
}

func fromTemplates(templates []*Template) *Catalog {
	c := &Catalog{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if _, dup := c.templates[t.ID]; dup {
			continue
		}
		c.templates[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	return c
}

func (c *Catalog) addFolder(id, name string, rng *rand.Rand) {
	template := make([]*models.CardInstance, 0, DeckSize)
	for i := 0; i < DeckSize; i++ {
		t := c.templates[c.order[rng.Intn(len(c.order))]]
		template = append(template, instantiate(t))
	}
	c.folders = append(c.folders, &Folder{ID: id, Name: name, Template: template})
}

// instantiate clones a template into a card instance with a unique id.
func instantiate(t *Template) *models.CardInstance {
	suffix := uuid.NewString()[:8]
	return &models.CardInstance{
		InstanceID:        t.ID + "-" + suffix,
		TemplateID:        t.ID,
		Name:              t.Name,
		Description:       t.Description,
		Color:             t.Color,
		Kind:              t.Kind,
		Attack:            t.Attack,
		Health:            t.Health,
		Cost:              t.Cost,
		EffectKind:        t.EffectKind,
		EffectDescription: t.EffectDescription,
	}
}

// Folder returns a folder by id.
func (c *Catalog) Folder(id string) (*Folder, bool) {
	for _, f := range c.folders {
		if f.ID == id {
			return f, true
		}
	}
	return nil, false
}

// BuildDeck expands a folder template into a fresh deck: every card is
// re-instantiated so two participants choosing the same folder never
// share instance ids.
func (c *Catalog) BuildDeck(folderID string) ([]*models.CardInstance, error) {
	f, ok := c.Folder(folderID)
	if !ok {
		return nil, fmt.Errorf("folder %q not found", folderID)
	}
	deck := make([]*models.CardInstance, 0, len(f.Template))
	for _, card := range f.Template {
		t, ok := c.templates[card.TemplateID]
		if !ok {
			return nil, fmt.Errorf("folder %q references unknown template %q", folderID, card.TemplateID)
		}
		deck = append(deck, instantiate(t))
	}
	return deck, nil
}

// ListFolders summarizes every folder for a selection menu: padded
// display name, per-color card counts and the total card count.
func (c *Catalog) ListFolders() []FolderSummary {
	out := make([]FolderSummary, 0, len(c.folders))
	for _, f := range c.folders {
		counts := make(map[models.Color]int)
		for _, card := range f.Template {
			counts[card.Color]++
		}
		name := f.Name
		if len(name) < folderNamePad {
			name += strings.Repeat(" ", folderNamePad-len(name))
		}
		out = append(out, FolderSummary{
			ID:          f.ID,
			DisplayName: name,
			ColorCounts: counts,
			Total:       len(f.Template),
		})
	}
	return out
}
