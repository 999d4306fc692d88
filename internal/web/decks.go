package web

import (
	"sort"

	"github.com/peterkuimelis/gwentx/internal/game"
)

// CardInfo is the JSON representation of a card for the /api/cards endpoint.
type CardInfo struct {
	Name     string `json:"name"`
	Strength *int   `json:"strength,omitempty"`
	Row      string `json:"row"`
	Ability  string `json:"ability,omitempty"`
	Hero     bool   `json:"hero,omitempty"`
	Category string `json:"category"`
	Faction  string `json:"faction,omitempty"`
}

// DeckInfo is the JSON representation of a deck for the /api/decks endpoint.
type DeckInfo struct {
	Number  int      `json:"number"`
	Name    string   `json:"name"`
	Faction string   `json:"faction"`
	Leader  string   `json:"leader,omitempty"`
	Size    int      `json:"size"`
	Cards   []string `json:"cards"`
}

func cardInfos(cat *game.Catalog) []CardInfo {
	cards := cat.Cards()
	infos := make([]CardInfo, 0, len(cards))
	for _, c := range cards {
		ci := CardInfo{
			Name:     c.Name,
			Row:      c.Row.String(),
			Hero:     c.Hero,
			Category: c.Category.String(),
			Faction:  c.Faction,
		}
		if c.Ability != game.AbilityNone {
			ci.Ability = c.Ability.String()
		}
		if c.HasStrength {
			strength := c.Strength
			ci.Strength = &strength
		}
		infos = append(infos, ci)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func deckInfos(cat *game.Catalog) ([]DeckInfo, error) {
	var decks []DeckInfo
	for i := range cat.Decks() {
		dl, err := cat.DeckByNumber(i + 1)
		if err != nil {
			return nil, err
		}
		di := DeckInfo{
			Number:  i + 1,
			Name:    dl.Name,
			Faction: dl.Faction,
			Size:    len(dl.Cards),
		}
		if dl.Leader != nil {
			di.Leader = dl.Leader.Name
		}
		// Unique card names for display
		seen := make(map[string]bool)
		for _, c := range dl.Cards {
			if !seen[c.Name] {
				di.Cards = append(di.Cards, c.Name)
				seen[c.Name] = true
			}
		}
		decks = append(decks, di)
	}
	return decks, nil
}
