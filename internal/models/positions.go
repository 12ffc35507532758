package models

import "strings"

// Position maps a roster code to its display label.
type Position struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// positions is in display order; the first entry is the default selection.
var positions = []Position{
	{"P", "Pitcher"},
	{"SP", "Starting pitcher"},
	{"RP", "Relief pitcher"},
	{"C", "Catcher"},
	{"1B", "First base"},
	{"2B", "Second base"},
	{"3B", "Third base"},
	{"SS", "Shortstop"},
	{"LF", "Left field"},
	{"CF", "Center field"},
	{"RF", "Right field"},
	{"OF", "Outfield"},
	{"DH", "Designated hitter"},
}

var (
	byCode  = make(map[string]Position, len(positions))
	byLabel = make(map[string]Position, len(positions))
)

func init() {
	for _, p := range positions {
		byCode[p.Code] = p
		byLabel[strings.ToLower(p.Label)] = p
	}
}

// Positions returns the positions in display order.
func Positions() []Position {
	out := make([]Position, len(positions))
	copy(out, positions)
	return out
}

// DefaultPosition is the first position in display order.
func DefaultPosition() Position {
	return positions[0]
}

func PositionByCode(code string) (Position, bool) {
	p, ok := byCode[strings.ToUpper(strings.TrimSpace(code))]
	return p, ok
}

// PositionByLabel looks a position up by its display label, case-insensitively.
func PositionByLabel(label string) (Position, bool) {
	p, ok := byLabel[strings.ToLower(strings.TrimSpace(label))]
	return p, ok
}

// LookupPosition accepts either a label or a code.
func LookupPosition(s string) (Position, bool) {
	if p, ok := PositionByLabel(s); ok {
		return p, true
	}
	return PositionByCode(s)
}
