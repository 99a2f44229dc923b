package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	headerJunkRe = regexp.MustCompile(`[^0-9a-zA-Z_]`)
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	// Accepts "1,234.56", "$1.2M", "2.5k", "1 200" and plain numbers.
	scaledNumberRe = regexp.MustCompile(`^\$?(-?\d{1,3}(?:[,\s]\d{3})*(?:\.\d+)?|\d+(?:\.\d+)?)([kKmMbB])?$`)
)

var scaleSuffixes = map[string]float64{
	"k": 1e3, "K": 1e3,
	"m": 1e6, "M": 1e6,
	"b": 1e9, "B": 1e9,
}

// NormalizeHeader converts a raw column header to snake_case, dropping
// everything that is not a letter, digit, or underscore. An empty result
// becomes "col".
func NormalizeHeader(h string) string {
	s := whitespaceRe.ReplaceAllString(strings.TrimSpace(h), "_")
	s = headerJunkRe.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	if s == "" {
		return "col"
	}
	return s
}

// CoerceValue normalizes a cell to a storable value: numeric strings (with
// separators, a currency prefix, or a k/m/b scale suffix) become numbers,
// integral numbers become int64, ISO dates and everything else stay strings,
// and blanks become nil.
func CoerceValue(v string) any {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}

	if m := scaledNumberRe.FindStringSubmatch(s); m != nil {
		digits := strings.NewReplacer(",", "", " ", "").Replace(m[1])
		num, err := strconv.ParseFloat(digits, 64)
		if err == nil {
			if mult, ok := scaleSuffixes[m[2]]; ok {
				num *= mult
			}
			if math.Abs(num-math.Trunc(num)) < 1e-9 {
				return int64(num)
			}
			return num
		}
	}

	if isoDateRe.MatchString(s) {
		return s
	}
	return s
}

// NormalizeRow normalizes both keys and values of an extracted row.
func NormalizeRow(row map[string]string) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[NormalizeHeader(k)] = CoerceValue(v)
	}
	return out
}
