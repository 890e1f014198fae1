package catalog

import (
	"bytes"
	_ "embed"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/myrjola/nai/internal/errors"
	"gopkg.in/yaml.v3"
)

// MaxQuestions is the number of pre-authored questions an item may carry.
const MaxQuestions = 3

//go:embed items.yaml
var defaultCatalog []byte

var (
	ErrTooManyQuestions = errors.NewSentinel("too many questions")
	ErrInvalidItem      = errors.NewSentinel("invalid item")
	ErrNotFound         = errors.NewSentinel("item not found")
)

// Item is an inventory item the user can ask about. Items are immutable once loaded.
type Item struct {
	Name      string   `yaml:"name"`
	Type      ItemType `yaml:"type"`
	Questions []string `yaml:"questions"`
	// Lore is the background text the generation service answers from.
	Lore string `yaml:"lore"`
}

// Question returns the i:th pre-authored question.
func (i Item) Question(idx int) (string, bool) {
	if idx < 0 || idx >= len(i.Questions) {
		return "", false
	}
	return i.Questions[idx], true
}

func (i Item) validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return errors.Wrap(ErrInvalidItem, "empty name")
	}
	if !i.Type.Valid() {
		return errors.Wrap(ErrUnknownItemType, "validate item", slog.String("name", i.Name))
	}
	if len(i.Questions) > MaxQuestions {
		return errors.Wrap(ErrTooManyQuestions, "validate item",
			slog.String("name", i.Name), slog.Int("questions", len(i.Questions)))
	}
	for idx, q := range i.Questions {
		if strings.TrimSpace(q) == "" {
			return errors.Wrap(ErrInvalidItem, "empty question",
				slog.String("name", i.Name), slog.Int("index", idx))
		}
	}
	return nil
}

// Catalog is the fixed list of known items.
type Catalog struct {
	items []Item
}

type catalogFile struct {
	Items []Item `yaml:"items"`
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	for _, item := range file.Items {
		if err := item.validate(); err != nil {
			return nil, err
		}
	}
	return &Catalog{items: file.Items}, nil
}

// LoadFile loads the catalog at path, or the embedded default catalog if path is empty.
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog", slog.String("path", path))
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultCatalog))
}

// Items returns the items in catalog order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// ByType returns the first item of type t.
func (c *Catalog) ByType(t ItemType) (Item, error) {
	for _, item := range c.items {
		if item.Type == t {
			return item, nil
		}
	}
	return Item{}, errors.Wrap(ErrNotFound, "find item", slog.String("item_type", t.String()))
}

// UnmarshalYAML reads item types by name.
func (t *ItemType) UnmarshalYAML(value *yaml.Node) error {
	return t.UnmarshalText([]byte(value.Value))
}
