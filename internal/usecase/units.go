package usecase

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/macrolens/diettracker/internal/domain"
)

// UnitFormat describes how a unit is abbreviated and where the abbreviation goes
type UnitFormat struct {
	Abbr         string
	DisplayAfter bool // true renders "100g", false renders "g100"
}

var defaultUnitFormats = map[domain.UnitCode]UnitFormat{
	domain.UnitGram:  {Abbr: "g", DisplayAfter: true},
	domain.UnitPiece: {Abbr: "pc", DisplayAfter: true},
	domain.UnitScoop: {Abbr: "sc", DisplayAfter: true},
}

// UnitFormatter renders amounts with their unit abbreviation
type UnitFormatter struct {
	formats map[domain.UnitCode]UnitFormat
	logger  *zap.Logger
}

// NewUnitFormatter creates a formatter over the built-in unit table
func NewUnitFormatter(logger *zap.Logger) *UnitFormatter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UnitFormatter{formats: defaultUnitFormats, logger: logger}
}

// Lookup returns the display settings of unit
func (f *UnitFormatter) Lookup(unit domain.UnitCode) (UnitFormat, bool) {
	format, ok := f.formats[unit]
	return format, ok
}

// Format renders amount with unit, e.g. "100g". Unknown units fall back to "100 cup".
func (f *UnitFormatter) Format(amount float64, unit domain.UnitCode) string {
	value := strconv.FormatFloat(amount, 'f', -1, 64)

	format, ok := f.formats[unit]
	if !ok {
		f.logger.Warn("no unit configuration found", zap.String("unit", string(unit)))
		return fmt.Sprintf("%s %s", value, unit)
	}

	if format.DisplayAfter {
		return value + format.Abbr
	}
	return format.Abbr + value
}
