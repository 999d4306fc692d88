package game

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed decks.yaml
var defaultCatalog []byte

// CatalogFile represents the top-level YAML structure.
type CatalogFile struct {
	Cards []CardEntry `yaml:"cards"`
	Decks []DeckEntry `yaml:"decks"`
}

// CardEntry is one card definition in the YAML file.
type CardEntry struct {
	Name     string `yaml:"name" json:"name"`
	Strength *int   `yaml:"strength,omitempty" json:"strength,omitempty"`
	Row      string `yaml:"row,omitempty" json:"row,omitempty"`
	Ability  string `yaml:"ability,omitempty" json:"ability,omitempty"`
	Hero     bool   `yaml:"hero,omitempty" json:"hero,omitempty"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	Faction  string `yaml:"faction,omitempty" json:"faction,omitempty"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name    string          `yaml:"name" json:"name"`
	Faction string          `yaml:"faction" json:"faction"`
	Leader  string          `yaml:"leader,omitempty" json:"leader,omitempty"`
	Cards   []DeckCardEntry `yaml:"cards" json:"cards"`
}

// DeckCardEntry represents a card and its count in a deck.
type DeckCardEntry struct {
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"count" json:"count"`
}

// DeckList is a deck resolved against a catalog.
type DeckList struct {
	Name    string
	Faction string
	Leader  *Card
	Cards   []*Card
}

// Catalog holds every card definition and deck list loaded from a file.
type Catalog struct {
	cards map[string]*Card
	order []*Card
	decks []DeckEntry
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog file. An empty path loads the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog parses catalog YAML. Every deck must reference known cards.
func ParseCatalog(data []byte) (*Catalog, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}

	c := &Catalog{cards: make(map[string]*Card, len(cf.Cards))}
	for _, entry := range cf.Cards {
		card, err := entry.toCard()
		if err != nil {
			return nil, err
		}
		if _, dup := c.cards[card.Name]; dup {
			return nil, fmt.Errorf("card %q defined twice", card.Name)
		}
		c.cards[card.Name] = card
		c.order = append(c.order, card)
	}

	for _, deck := range cf.Decks {
		if deck.Leader != "" {
			if _, ok := c.cards[deck.Leader]; !ok {
				return nil, fmt.Errorf("deck %q leader: %w: %q", deck.Name, ErrUnknownCard, deck.Leader)
			}
		}
		for _, entry := range deck.Cards {
			if _, ok := c.cards[entry.Name]; !ok {
				return nil, fmt.Errorf("deck %q: %w: %q", deck.Name, ErrUnknownCard, entry.Name)
			}
			if entry.Count < 0 {
				return nil, fmt.Errorf("deck %q: negative count for %q", deck.Name, entry.Name)
			}
		}
	}
	c.decks = cf.Decks
	return c, nil
}

func (e CardEntry) toCard() (*Card, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return nil, fmt.Errorf("card entry without a name")
	}
	row, err := ParseLane(e.Row)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", name, err)
	}
	ability, err := ParseAbility(e.Ability)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", name, err)
	}
	category, err := ParseCategory(e.Category)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", name, err)
	}

	card := &Card{
		Name:     name,
		Row:      row,
		Ability:  ability,
		Hero:     e.Hero,
		Category: category,
		Faction:  e.Faction,
	}
	if e.Strength != nil {
		if *e.Strength < 0 {
			return nil, fmt.Errorf("card %q: negative strength %d", name, *e.Strength)
		}
		card.Strength = *e.Strength
		card.HasStrength = true
	}
	return card, nil
}

// Lookup returns the card definition with the given name.
func (c *Catalog) Lookup(name string) (*Card, error) {
	card, ok := c.cards[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, name)
	}
	return card, nil
}

// Cards returns every card definition in file order.
func (c *Catalog) Cards() []*Card {
	return append([]*Card(nil), c.order...)
}

// Decks returns the raw deck entries in file order.
func (c *Catalog) Decks() []DeckEntry {
	return append([]DeckEntry(nil), c.decks...)
}

// DeckByNumber returns the Nth deck (1-indexed).
func (c *Catalog) DeckByNumber(n int) (DeckList, error) {
	if n < 1 || n > len(c.decks) {
		return DeckList{}, fmt.Errorf("deck %d not found (have %d decks)", n, len(c.decks))
	}
	return c.resolve(c.decks[n-1])
}

// DeckByName returns the deck with the given name (case-insensitive).
func (c *Catalog) DeckByName(name string) (DeckList, error) {
	for _, d := range c.decks {
		if strings.EqualFold(d.Name, name) {
			return c.resolve(d)
		}
	}
	return DeckList{}, fmt.Errorf("deck %q not found", name)
}

// Deck resolves a deck selector: a 1-based number or a deck name.
func (c *Catalog) Deck(selector string) (DeckList, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(selector)); err == nil {
		return c.DeckByNumber(n)
	}
	return c.DeckByName(selector)
}

func (c *Catalog) resolve(d DeckEntry) (DeckList, error) {
	dl := DeckList{Name: d.Name, Faction: d.Faction}
	if d.Leader != "" {
		leader, err := c.Lookup(d.Leader)
		if err != nil {
			return DeckList{}, err
		}
		dl.Leader = leader
	}
	for _, entry := range d.Cards {
		card, err := c.Lookup(entry.Name)
		if err != nil {
			return DeckList{}, err
		}
		for i := 0; i < entry.Count; i++ {
			dl.Cards = append(dl.Cards, card)
		}
	}
	return dl, nil
}

// Validate applies the deck composition rule to the list.
func (dl DeckList) Validate(rules Rules) error {
	rules = rules.orDefault()
	if err := ValidateCards(dl.Cards, rules.MinUnits, rules.MaxSpecials); err != nil {
		return fmt.Errorf("deck %q: %w", dl.Name, err)
	}
	return nil
}
