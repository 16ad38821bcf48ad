package catalog

import "github.com/emersongin/cardbattle-service/internal/models"

// builtinTemplates is the default card set used when no catalog file is
// configured. Stats are placeholders pending balance work; the engine
// only cares about color, kind, attack, health and cost.
func builtinTemplates() []*Template {
	return []*Template{
		// Red
		{ID: "red-001", Name: "Ember Recruit", Color: models.ColorRed, Kind: models.KindBattle, Attack: 10, Health: 10, Cost: 1},
		{ID: "red-002", Name: "Flame Lancer", Color: models.ColorRed, Kind: models.KindBattle, Attack: 20, Health: 10, Cost: 2},
		{ID: "red-003", Name: "Pyre Colossus", Color: models.ColorRed, Kind: models.KindBattle, Attack: 30, Health: 20, Cost: 3},
		{ID: "red-p01", Name: "Scorched Earth", Color: models.ColorRed, Kind: models.KindPower,
			EffectKind: "damage", EffectDescription: "Deal damage to the opposing front line."},

		// Green
		{ID: "grn-001", Name: "Thorn Scout", Color: models.ColorGreen, Kind: models.KindBattle, Attack: 10, Health: 15, Cost: 1},
		{ID: "grn-002", Name: "Grove Warden", Color: models.ColorGreen, Kind: models.KindBattle, Attack: 15, Health: 25, Cost: 2},
		{ID: "grn-003", Name: "Elder Treant", Color: models.ColorGreen, Kind: models.KindBattle, Attack: 25, Health: 35, Cost: 3},
		{ID: "grn-p01", Name: "Overgrowth", Color: models.ColorGreen, Kind: models.KindPower,
			EffectKind: "heal", EffectDescription: "Restore health to your committed cards."},

		// Blue
		{ID: "blu-001", Name: "Tide Adept", Color: models.ColorBlue, Kind: models.KindBattle, Attack: 10, Health: 10, Cost: 1},
		{ID: "blu-002", Name: "Mist Caller", Color: models.ColorBlue, Kind: models.KindBattle, Attack: 15, Health: 15, Cost: 2},
		{ID: "blu-003", Name: "Abyss Leviathan", Color: models.ColorBlue, Kind: models.KindBattle, Attack: 35, Health: 15, Cost: 3},
		{ID: "blu-p01", Name: "Riptide", Color: models.ColorBlue, Kind: models.KindPower,
			EffectKind: "draw", EffectDescription: "Draw an extra card from your deck."},

		// Black
		{ID: "blk-001", Name: "Gloom Stalker", Color: models.ColorBlack, Kind: models.KindBattle, Attack: 15, Health: 5, Cost: 1},
		{ID: "blk-002", Name: "Crypt Reaver", Color: models.ColorBlack, Kind: models.KindBattle, Attack: 25, Health: 10, Cost: 2},
		{ID: "blk-003", Name: "Dread Sovereign", Color: models.ColorBlack, Kind: models.KindBattle, Attack: 40, Health: 10, Cost: 3},
		{ID: "blk-p01", Name: "Soul Drain", Color: models.ColorBlack, Kind: models.KindPower,
			EffectKind: "discard", EffectDescription: "Force the opponent to trash a card."},

		// White
		{ID: "wht-001", Name: "Dawn Squire", Color: models.ColorWhite, Kind: models.KindBattle, Attack: 10, Health: 15, Cost: 1},
		{ID: "wht-002", Name: "Radiant Cleric", Color: models.ColorWhite, Kind: models.KindBattle, Attack: 15, Health: 20, Cost: 2},
		{ID: "wht-003", Name: "Seraph Vanguard", Color: models.ColorWhite, Kind: models.KindBattle, Attack: 25, Health: 30, Cost: 3},
		{ID: "wht-p01", Name: "Sanctuary", Color: models.ColorWhite, Kind: models.KindPower,
			EffectKind: "shield", EffectDescription: "Shield your committed cards this round."},

		// Orange (wild: free to commit, no point accrual when drawn)
		{ID: "org-001", Name: "Sun Vagrant", Color: models.ColorOrange, Kind: models.KindBattle, Attack: 10, Health: 10, Cost: 1},
		{ID: "org-002", Name: "Amber Duelist", Color: models.ColorOrange, Kind: models.KindBattle, Attack: 20, Health: 15, Cost: 2},
		{ID: "org-p01", Name: "Gilded Bargain", Color: models.ColorOrange, Kind: models.KindPower,
			EffectKind: "recycle", EffectDescription: "Return a trashed card to your deck."},
	}
}
