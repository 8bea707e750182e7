package ingest

import (
	"math"
	"strconv"
	"strings"

	"logistica/infrastructure/apperr"
)

// Table is a decoded CSV file with its header resolved against a Mapping.
//
// Splitting is not quote-aware: quote characters are stripped from every
// field but never protect an embedded delimiter, so fields must not contain
// the delimiter even when quoted.
type Table struct {
	Delimiter string
	Header    []string
	Columns   Columns
	Rows      []Row
}

// Row is one data line split into fields.
type Row struct {
	Line   int
	fields []string
	cols   Columns
}

// Parse runs decode, delimiter sniffing and header resolution, then splits
// every non-blank data line. Rows are not filtered here; record builders
// decide which rows are usable.
func Parse(data []byte, m Mapping) (*Table, error) {
	text := Decode(data)
	lines := SplitLines(text)

	headerAt := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, apperr.Validation("arquivo vazio")
	}

	delim := SniffDelimiter(lines[headerAt])
	header := strings.Split(lines[headerAt], delim)
	cols, err := m.Resolve(header)
	if err != nil {
		return nil, err
	}

	t := &Table{Delimiter: delim, Header: header, Columns: cols}
	for i := headerAt + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		t.Rows = append(t.Rows, Row{
			Line:   i + 1,
			fields: strings.Split(lines[i], delim),
			cols:   cols,
		})
	}
	return t, nil
}

// String returns the cleaned value of f, or "" when the column is absent or
// the row is too short.
func (r Row) String(f Field) string {
	idx, ok := r.cols[f]
	if !ok || idx < 0 || idx >= len(r.fields) {
		return ""
	}
	return cleanField(r.fields[idx])
}

func (r Row) Float(f Field) float64 {
	return Float(r.String(f))
}

func (r Row) Int(f Field) int {
	return Int(r.String(f))
}

// Float parses s accepting a comma decimal separator. Unparseable input is 0.
func Float(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if !plainDecimal(s) {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// plainDecimal accepts an optional sign, digits and at most one point.
// Exponents, hex floats and the NaN/Inf spellings fall through to 0.
func plainDecimal(s string) bool {
	s = strings.TrimLeft(s, "+-")
	digits, points := 0, 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			points++
		default:
			return false
		}
	}
	return digits > 0 && points <= 1
}

// Int reads the leading base-10 integer, so spreadsheet renderings like
// "10,0" or "12.7" keep their integer part. No leading digits is 0.
func Int(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return v
}

// FormatFloat is the shortest decimal rendering used for derived strings.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDecimalComma renders v with a comma decimal separator, the inverse of Float.
func FormatDecimalComma(v float64) string {
	return strings.Replace(FormatFloat(v), ".", ",", 1)
}

// Dimensions builds the "HxWxL" string.
func Dimensions(height, width, length float64) string {
	return FormatFloat(height) + "x" + FormatFloat(width) + "x" + FormatFloat(length)
}

// SplitDimensions is the inverse of Dimensions; missing parts are 0.
func SplitDimensions(dims string) (height, width, length float64) {
	parts := strings.Split(dims, "x")
	get := func(i int) float64 {
		if i >= len(parts) {
			return 0
		}
		return Float(parts[i])
	}
	return get(0), get(1), get(2)
}

func cleanField(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}
