// README: Identifier and coordinate value objects shared by every module.
package types

import "strconv"

// ID is a store-assigned identifier. Counters start at 1, so the zero value means "unset".
type ID int64

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a positive decimal identifier.
func ParseID(s string) (ID, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return ID(n), true
}

// IDPtr returns a pointer to a copy of id.
func IDPtr(id ID) *ID {
	return &id
}

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies within WGS84 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
