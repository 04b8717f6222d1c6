package theme

import "strings"

// ID identifies one of the built-in colour schemes.
type ID string

const (
	Dark     ID = "Dark"
	Light    ID = "Light"
	Midnight ID = "Midnight"
)

// Default is used for new sessions and for any identifier Resolve does not know.
const Default = Dark

// Palette holds the colours a transcript view needs. BotColor doubles as the
// container text colour.
type Palette struct {
	ChatBg      string `json:"chatBg"`
	UserBg      string `json:"userBg"`
	UserColor   string `json:"userColor"`
	BotBg       string `json:"botBg"`
	BotColor    string `json:"botColor"`
	ButtonBg    string `json:"buttonBg"`
	ButtonColor string `json:"buttonColor"`
}

var palettes = map[ID]Palette{
	Dark: {
		ChatBg:      "#1f1f1f",
		UserBg:      "#4caf50",
		UserColor:   "white",
		BotBg:       "#333",
		BotColor:    "#f1f1f1",
		ButtonBg:    "#f44336",
		ButtonColor: "white",
	},
	Light: {
		ChatBg:      "#f0f0f0",
		UserBg:      "#4caf50",
		UserColor:   "white",
		BotBg:       "#d3d3d3",
		BotColor:    "black",
		ButtonBg:    "#f44336",
		ButtonColor: "white",
	},
	Midnight: {
		ChatBg:      "#0b0c10",
		UserBg:      "#66fcf1",
		UserColor:   "#0b0c10",
		BotBg:       "#1f2833",
		BotColor:    "#c5c6c7",
		ButtonBg:    "#45a29e",
		ButtonColor: "#0b0c10",
	},
}

// All lists the theme identifiers in selector order.
func All() []ID {
	return []ID{Dark, Light, Midnight}
}

// Resolve returns the palette for id, falling back to the Dark palette.
func Resolve(id ID) Palette {
	if p, ok := palettes[id]; ok {
		return p
	}
	return palettes[Default]
}

// Valid reports whether id is one of the built-in themes.
func (id ID) Valid() bool {
	_, ok := palettes[id]
	return ok
}

// Parse matches raw against the built-in identifiers, ignoring case and
// surrounding whitespace.
func Parse(raw string) (ID, bool) {
	raw = strings.TrimSpace(raw)
	for _, id := range All() {
		if strings.EqualFold(string(id), raw) {
			return id, true
		}
	}
	return "", false
}
