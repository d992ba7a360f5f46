package importer

import (
	"math"
	"strings"
	"time"
)

// DateParser converts one cell into a date. ok is false when the cell is not
// in a form the parser understands.
type DateParser interface {
	ParseDate(c Cell) (t time.Time, ok bool)
}

// DateChain tries each parser in order.
type DateChain []DateParser

// ParseDate returns the first successful parse.
func (dc DateChain) ParseDate(c Cell) (time.Time, bool) {
	for _, p := range dc {
		if t, ok := p.ParseDate(c); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// serialEpoch is day 25569 of the spreadsheet calendar (1900 system, which
// counts the non-existent 1900-02-29).
const serialEpoch = 25569

// maxSerial keeps the day count far inside time.Time and year 9999.
const maxSerial = 2958465

// SerialDateParser reads numeric cells as spreadsheet day serials:
// 1970-01-01 UTC plus (serial - 25569) days.
type SerialDateParser struct{}

// ParseDate implements DateParser.
func (SerialDateParser) ParseDate(c Cell) (time.Time, bool) {
	n, ok := cellNumber(c)
	if !ok || n < 0 || n > maxSerial {
		return time.Time{}, false
	}

	days := n - serialEpoch
	whole := math.Floor(days)
	frac := days - whole
	t := time.Unix(0, 0).UTC().
		AddDate(0, 0, int(whole)).
		Add(time.Duration(math.Round(frac * float64(24*time.Hour))))
	if t.Year() < 1 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

// DefaultLayouts are tried in order for text cells: DD.MM.YYYY, YYYY-MM-DD,
// MM/DD/YYYY. Day and month accept one or two digits.
var DefaultLayouts = []string{"2.1.2006", "2006-1-2", "1/2/2006"}

// LayoutDateParser reads text cells with fixed layouts.
type LayoutDateParser struct {
	Layouts  []string
	Location *time.Location
}

// ParseDate implements DateParser.
func (p LayoutDateParser) ParseDate(c Cell) (time.Time, bool) {
	s, ok := c.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)

	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range p.Layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimeCellParser accepts cells that a decoder already typed as time.Time.
type TimeCellParser struct{}

// ParseDate implements DateParser.
func (TimeCellParser) ParseDate(c Cell) (time.Time, bool) {
	t, ok := c.(time.Time)
	if !ok || t.IsZero() {
		return time.Time{}, false
	}
	return t, true
}

// DefaultDateParser returns the standard chain with text dates read in loc.
func DefaultDateParser(loc *time.Location) DateParser {
	return DateChain{
		TimeCellParser{},
		SerialDateParser{},
		LayoutDateParser{Layouts: DefaultLayouts, Location: loc},
	}
}

// coerceDate never fails: empty and unreadable cells become now. A numeric
// zero counts as empty.
func coerceDate(p DateParser, c Cell, now time.Time) time.Time {
	if isEmptyCell(c) {
		return now
	}
	if n, ok := cellNumber(c); ok && n == 0 {
		return now
	}
	if t, ok := p.ParseDate(c); ok {
		return t
	}
	return now
}
