package entity

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Hall is a catalog read model. The core never mutates halls; it only
// resolves the seat layout for validation.
type Hall struct {
	Base
	TheaterID  uuid.UUID `db:"theater_id"`
	Name       string    `db:"name"`
	SeatLayout SeatGrid  `db:"seat_layout"`
}

// SeatGrid is the stored seating layout: rows of cells, possibly ragged.
type SeatGrid [][]SeatCell

// SeatCell is one position in the seating grid. Stored layouts mix cell
// types: seat labels may be strings ("A1") or numbers (3), and aisles may be
// null, 0, a negative number, or "". Anything unrecognized is an aisle too —
// a malformed grid must never fail, it just yields no seats.
type SeatCell struct {
	label string
}

// Seat returns a cell holding the given label.
func Seat(label string) SeatCell {
	return SeatCell{label: label}
}

func (c SeatCell) Label() string { return c.label }

func (c SeatCell) IsAisle() bool { return c.label == "" }

func (c *SeatCell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		c.label = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			c.label = ""
			return nil
		}
		c.label = s
		return nil
	}

	// numeric cell: strictly positive numbers are seat labels, keeping their
	// literal form ("3" stays "3", not "3.0")
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if f, err := n.Float64(); err == nil && f > 0 {
			c.label = n.String()
			return nil
		}
	}

	c.label = ""
	return nil
}

func (c SeatCell) MarshalJSON() ([]byte, error) {
	if c.label == "" {
		return []byte("null"), nil
	}
	return json.Marshal(c.label)
}

// ValidSeatIDs collects the set of seat identifiers present in the grid.
// Aisle cells are skipped; duplicate labels collapse into one entry.
func (g SeatGrid) ValidSeatIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, row := range g {
		for _, cell := range row {
			if !cell.IsAisle() {
				ids[cell.Label()] = struct{}{}
			}
		}
	}
	return ids
}
