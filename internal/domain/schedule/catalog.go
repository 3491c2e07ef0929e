package schedule

import (
	"fmt"

	"github.com/cmlabs-hris/estate-attendance-go/internal/pkg/calendar"
)

// Catalog maps shift codes to their definitions. OFF is never in the table.
type Catalog map[Code]Definition

// DefaultCatalog is the site shift table.
func DefaultCatalog() Catalog {
	return Catalog{
		CodeP: {
			Code:  CodeP,
			Start: calendar.Clock(8, 0),
			End:   calendar.Clock(16, 0),
			Label: "Pagi",
		},
		CodePM: {
			Code:  CodePM,
			Start: calendar.Clock(16, 0),
			End:   calendar.Clock(0, 0),
			Label: "Pagi-Malam",
		},
		CodeM: {
			Code:  CodeM,
			Start: calendar.Clock(22, 0),
			End:   calendar.Clock(6, 0),
			Label: "Malam",
		},
	}
}

// Lookup returns the definition of code. OFF yields ok=false with no error.
func (c Catalog) Lookup(code Code) (Definition, bool, error) {
	if code.IsOff() {
		return Definition{}, false, nil
	}
	def, found := c[code]
	if !found {
		return Definition{}, false, fmt.Errorf("%w: %q", ErrInvalidShiftCode, code)
	}
	return def, true, nil
}

// IsOvernight reports whether code names an overnight shift in this catalog.
func (c Catalog) IsOvernight(code Code) bool {
	def, ok, err := c.Lookup(code)
	return err == nil && ok && def.IsOvernight()
}

// Valid reports whether code is OFF or a catalog entry.
func (c Catalog) Valid(code Code) bool {
	_, _, err := c.Lookup(code)
	return err == nil
}
