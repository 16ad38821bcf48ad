package models

// Color is a card's resource color.
type Color string

const (
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorBlack  Color = "black"
	ColorWhite  Color = "white"
	ColorOrange Color = "orange"
)

// PointColors are the colors tracked as resource points on a board.
// Orange is wild and is never tracked: it costs nothing to commit and
// accrues nothing when drawn.
var PointColors = []Color{ColorRed, ColorGreen, ColorBlue, ColorBlack, ColorWhite}

// CardKind distinguishes battle cards (attack/health/cost) from power
// cards (queued effects).
type CardKind string

const (
	KindBattle CardKind = "battle"
	KindPower  CardKind = "power"
)

// CardInstance is a single physical card in a match. InstanceID is unique
// within a deck (template id plus a random suffix); TemplateID refers back
// to the catalog entry it was cloned from.
type CardInstance struct {
	InstanceID        string   `json:"instanceId"`
	TemplateID        string   `json:"templateId"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Color             Color    `json:"color"`
	Kind              CardKind `json:"kind"`
	Attack            int      `json:"attack"`
	Health            int      `json:"health"`
	Cost              int      `json:"cost"`
	EffectKind        string   `json:"effectKind,omitempty"`
	EffectDescription string   `json:"effectDescription,omitempty"`
}

// IsWild reports whether the card bypasses resource-point accounting.
func (c *CardInstance) IsWild() bool {
	return c.Color == ColorOrange
}
