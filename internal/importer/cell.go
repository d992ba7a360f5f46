package importer

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// cellString converts a cell to trimmed text. Falsy cells (nil, false and a
// numeric zero) become "".
func cellString(c Cell) string {
	if c == nil || c == false {
		return ""
	}
	if n, ok := cellNumber(c); ok && n == 0 {
		return ""
	}
	if t, ok := c.(time.Time); ok {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(cast.ToString(c))
}

// cellNumber returns the value of a numeric cell. Text cells are not numeric,
// even when they look like a number.
func cellNumber(c Cell) (float64, bool) {
	switch c.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToFloat64E(c)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// isEmptyCell reports whether a cell carries no value.
func isEmptyCell(c Cell) bool {
	switch v := c.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}
