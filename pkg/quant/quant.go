package quant

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"nexchain_go/pkg/safe"
)

// PriceMicros represents price multiplied by 1,000,000 (10^6).
// E.g., 1.23 USD = 1,230,000 PriceMicros.
type PriceMicros int64

// QtySats represents quantity multiplied by 100,000,000 (10^8).
// E.g., 1.0 BTC = 100,000,000 QtySats.
type QtySats int64

// PercentMicros represents a percentage multiplied by 1,000,000.
// E.g., 2.5% = 2,500,000 PercentMicros.
type PercentMicros int64

// TimeStamp represents Unix Microseconds.
type TimeStamp int64

const (
	PriceScale   = 1000000
	QtyScale     = 100000000
	PercentScale = 1000000
)

// ToPriceMicros converts a float64 (from external API) to PriceMicros.
// Note: Only used at the boundary. Internal logic uses PriceMicros directly.
func ToPriceMicros(f float64) PriceMicros {
	return PriceMicros(math.Round(f * PriceScale))
}

// ToQtySats converts a float64 to QtySats.
func ToQtySats(f float64) QtySats {
	return QtySats(math.Round(f * QtyScale))
}

func (p PriceMicros) String() string {
	return fmt.Sprintf("%.6f", float64(p)/PriceScale)
}

func (q QtySats) String() string {
	return fmt.Sprintf("%.8f", float64(q)/QtyScale)
}

func (p PercentMicros) String() string {
	return fmt.Sprintf("%.6f", float64(p)/PercentScale)
}

// ParseTimeStamp converts a string (ms) to TimeStamp (micros).
func ParseTimeStamp(s string) (TimeStamp, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TimeStamp(ms * 1000), nil
}

// MillisToTimeStamp converts Unix milliseconds to TimeStamp (micros).
func MillisToTimeStamp(ms int64) TimeStamp {
	return TimeStamp(ms * 1000)
}

// ParsePriceMicros parses a numeric string to PriceMicros without using
// float64. Feed payloads carry prices as strings; fixed-point parsing
// keeps exactness, and the error return lets callers drop bad frames.
func ParsePriceMicros(s string) (PriceMicros, error) {
	v, err := parseFixedPoint(s, 6)
	return PriceMicros(v), err
}

// ParseQtySats parses a numeric string to QtySats without using float64.
func ParseQtySats(s string) (QtySats, error) {
	v, err := parseFixedPoint(s, 8)
	return QtySats(v), err
}

// ParsePercentMicros parses a numeric string to PercentMicros without using float64.
func ParsePercentMicros(s string) (PercentMicros, error) {
	v, err := parseFixedPoint(s, 6)
	return PercentMicros(v), err
}

// ToPriceMicrosStr is the lenient form of ParsePriceMicros: unparsable
// input yields 0. Only for display/auxiliary fields where zero is an
// acceptable stand-in, never for values that gate order execution.
func ToPriceMicrosStr(s string) PriceMicros {
	v, _ := ParsePriceMicros(s)
	return v
}

// ToQtySatsStr is the lenient form of ParseQtySats.
func ToQtySatsStr(s string) QtySats {
	v, _ := ParseQtySats(s)
	return v
}

// ToPercentMicrosStr is the lenient form of ParsePercentMicros.
func ToPercentMicrosStr(s string) PercentMicros {
	v, _ := ParsePercentMicros(s)
	return v
}

// parseFixedPoint parses a numeric string into an int64 with the given
// precision. E.g., parseFixedPoint("1.23", 6) -> 1,230,000.
func parseFixedPoint(s string, precision int) (int64, error) {
	if s == "" || s == "null" {
		return 0, fmt.Errorf("empty numeric string")
	}

	intStr, fracStr := s, ""
	if dot := strings.IndexByte(s, '.'); dot != -1 {
		intStr, fracStr = s[:dot], s[dot+1:]
		if strings.IndexByte(fracStr, '.') != -1 {
			return 0, fmt.Errorf("invalid numeric string %q", s)
		}
	}

	neg := strings.HasPrefix(intStr, "-")

	intPart, err := strconv.ParseInt(intStr, 10, 64)
	if err != nil {
		if intStr != "" && intStr != "-" {
			return 0, fmt.Errorf("invalid integer part %q: %w", intStr, err)
		}
		intPart = 0 // ".5" / "-.5" case
	}

	scale := int64(1)
	for i := 0; i < precision; i++ {
		scale *= 10
	}
	scaled, ok := safe.CheckedMul(intPart, scale)
	if !ok {
		return 0, fmt.Errorf("value %q overflows at precision %d", s, precision)
	}

	if fracStr == "" {
		if intStr == "" || intStr == "-" {
			return 0, fmt.Errorf("invalid numeric string %q", s)
		}
		return scaled, nil
	}

	if len(fracStr) > precision {
		fracStr = fracStr[:precision]
	}
	fracPart, err := strconv.ParseInt(fracStr, 10, 64)
	if err != nil || fracPart < 0 {
		return 0, fmt.Errorf("invalid fractional part %q", fracStr)
	}
	for i := len(fracStr); i < precision; i++ {
		fracPart *= 10
	}

	if neg {
		fracPart = -fracPart
	}
	total, ok := safe.CheckedAdd(scaled, fracPart)
	if !ok {
		return 0, fmt.Errorf("value %q overflows at precision %d", s, precision)
	}
	return total, nil
}
