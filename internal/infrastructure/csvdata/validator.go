package csvdata

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/solscope/token-analyzer/internal/domain/entities"
)

// MaxCSVBytes bounds the decoded payload size.
const MaxCSVBytes = 10 * 1024 * 1024

// requiredColumns must exist verbatim in the header.
var requiredColumns = []string{"Signature", "Human Time"}

// signaturePattern matches the base64-ish alphabet of Solana transaction
// signatures as exported by trade-log tools.
var signaturePattern = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// timeLayouts are the accepted "Human Time" formats. The fractional
// layout also accepts whole seconds, it is kept explicit for clarity.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	time.RFC3339,
}

// DecodeBase64 decodes a base64 CSV payload, returning a
// ValidationError on malformed input.
func DecodeBase64(encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, entities.NewValidationError("Invalid base64 encoding")
	}
	return raw, nil
}

// ValidateBase64 decodes and validates a base64 CSV payload.
func ValidateBase64(encoded string) (*entities.Table, error) {
	raw, err := DecodeBase64(encoded)
	if err != nil {
		return nil, err
	}
	return Validate(raw)
}

// Validate parses raw CSV bytes into a Table. Every rule runs eagerly
// against the whole table; the first violated rule is surfaced as a
// ValidationError. Encoding and size checks run before structural
// parsing.
func Validate(raw []byte) (*entities.Table, error) {
	if !utf8.Valid(raw) {
		return nil, entities.NewValidationError("Invalid UTF-8 encoding")
	}
	if len(raw) > MaxCSVBytes {
		return nil, entities.NewValidationError("File size exceeds maximum limit of %dMB", MaxCSVBytes/1024/1024)
	}

	table, err := parseTable(raw)
	if err != nil {
		return nil, err
	}

	if err := checkRequiredColumns(table.Headers); err != nil {
		return nil, err
	}
	if err := checkHumanTime(table.Rows); err != nil {
		return nil, err
	}
	if err := checkSignatures(table.Rows); err != nil {
		return nil, err
	}

	return table, nil
}

func parseTable(raw []byte) (*entities.Table, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, entities.NewValidationError("Invalid CSV format")
	}
	if len(records) == 0 {
		return nil, entities.NewValidationError("Empty CSV file")
	}

	headers := records[0]
	rows := make([]entities.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(entities.Row, len(headers))
		for i, h := range headers {
			row[h] = record[i]
		}
		rows = append(rows, row)
	}

	return &entities.Table{Headers: headers, Rows: rows}, nil
}

func checkRequiredColumns(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return entities.NewValidationError("Missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func checkHumanTime(rows []entities.Row) error {
	for _, row := range rows {
		if _, err := ParseTimestamp(row["Human Time"]); err != nil {
			return entities.NewValidationError("Invalid date format in 'Human Time' column")
		}
	}
	return nil
}

func checkSignatures(rows []entities.Row) error {
	for _, row := range rows {
		if !signaturePattern.MatchString(row["Signature"]) {
			return entities.NewValidationError("Invalid signature format")
		}
	}
	return nil
}

// ParseTimestamp parses a "Human Time" cell under the permissive mixed
// layout set.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, value)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
