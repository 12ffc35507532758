package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Year slider domain and defaults.
const (
	MinYear        = 1988
	MaxYear        = 2016
	DefaultMinYear = 2000
	DefaultMaxYear = 2010
)

var ErrInvalidSelection = errors.New("invalid selection")

// Selection is the user's current filter: an inclusive year range and a
// position code.
type Selection struct {
	MinYear  int    `json:"min_year"`
	MaxYear  int    `json:"max_year"`
	Position string `json:"pos"`
}

func DefaultSelection() Selection {
	return Selection{
		MinYear:  DefaultMinYear,
		MaxYear:  DefaultMaxYear,
		Position: DefaultPosition().Code,
	}
}

// Label returns the display label of the selected position.
func (s Selection) Label() string {
	if p, ok := PositionByCode(s.Position); ok {
		return p.Label
	}
	return s.Position
}

// Validate checks the selection against the year domain and the position list.
func (s Selection) Validate() error {
	if s.MinYear < MinYear || s.MaxYear > MaxYear {
		return fmt.Errorf("%w: years must lie within %d-%d, got %d-%d",
			ErrInvalidSelection, MinYear, MaxYear, s.MinYear, s.MaxYear)
	}
	if s.MinYear > s.MaxYear {
		return fmt.Errorf("%w: min_year %d is after max_year %d", ErrInvalidSelection, s.MinYear, s.MaxYear)
	}
	if _, ok := PositionByCode(s.Position); !ok {
		return fmt.Errorf("%w: unknown position %q", ErrInvalidSelection, s.Position)
	}
	return nil
}

// Years returns every year in the selection, ascending.
func (s Selection) Years() []int {
	if s.MaxYear < s.MinYear {
		return nil
	}
	years := make([]int, 0, s.MaxYear-s.MinYear+1)
	for y := s.MinYear; y <= s.MaxYear; y++ {
		years = append(years, y)
	}
	return years
}

// Key is a stable textual form of the selection, used for cache keys.
func (s Selection) Key() string {
	return fmt.Sprintf("%d-%d-%s", s.MinYear, s.MaxYear, s.Position)
}

// ParseSelection builds a Selection from raw control values. Empty values
// take their defaults; position may be a label or a code.
func ParseSelection(minYear, maxYear, position string) (Selection, error) {
	sel := DefaultSelection()

	if v := strings.TrimSpace(minYear); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Selection{}, fmt.Errorf("%w: min_year %q is not a year", ErrInvalidSelection, v)
		}
		sel.MinYear = n
	}
	if v := strings.TrimSpace(maxYear); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Selection{}, fmt.Errorf("%w: max_year %q is not a year", ErrInvalidSelection, v)
		}
		sel.MaxYear = n
	}
	if v := strings.TrimSpace(position); v != "" {
		p, ok := LookupPosition(v)
		if !ok {
			return Selection{}, fmt.Errorf("%w: unknown position %q", ErrInvalidSelection, v)
		}
		sel.Position = p.Code
	}

	if err := sel.Validate(); err != nil {
		return Selection{}, err
	}
	return sel, nil
}
