package csvdata

import (
	"regexp"
	"strconv"

	"github.com/solscope/token-analyzer/internal/domain/entities"
)

// Source CSVs mix plain numbers with cells carrying currency symbols or
// thousands separators ("$1,234.56", "12.5 SOL"). Everything outside
// the numeric character set is stripped before parsing.
var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// ParseNumeric coerces a cell value into a float. Failure is a
// ParseError so callers can contain it per row.
func ParseNumeric(cell string) (float64, error) {
	cleaned := nonNumeric.ReplaceAllString(cell, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &entities.ParseError{Value: cell}
	}
	return f, nil
}
