package csvdata

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/solscope/token-analyzer/internal/domain/entities"
	"github.com/solscope/token-analyzer/internal/testutil"
)

func assertValidationError(t *testing.T, err error, message string) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var validationErr *entities.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %T: %v", err, err)
	}
	if validationErr.Message != message {
		t.Errorf("expected message %q, got %q", message, validationErr.Message)
	}
}

func TestValidate_Success(t *testing.T) {
	raw := testutil.BuildCSV(true,
		testutil.CreateSwapRow(),
		testutil.CreateSwapRow(testutil.WithToken1(testutil.TargetToken, "1000.0")),
	)

	table, err := Validate(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(table.Headers) != 7 {
		t.Errorf("expected 7 headers, got %d", len(table.Headers))
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	if table.Rows[0]["Signature"] != testutil.TestSignature {
		t.Errorf("expected signature %q, got %q", testutil.TestSignature, table.Rows[0]["Signature"])
	}
	if table.Rows[0]["Token1 Address"] != "SOL" {
		t.Errorf("expected 'SOL', got %q", table.Rows[0]["Token1 Address"])
	}
}

func TestValidate_HeaderOnlyTableIsEmpty(t *testing.T) {
	table, err := Validate(testutil.BuildCSV(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("expected 0 rows, got %d", len(table.Rows))
	}
}

func TestValidateBase64_Success(t *testing.T) {
	table, err := ValidateBase64(testutil.BuildCSVBase64(true, testutil.CreateSwapRow()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(table.Rows))
	}
}

func TestValidateBase64_InvalidEncoding(t *testing.T) {
	_, err := ValidateBase64("not-valid-base64!!!")
	assertValidationError(t, err, "Invalid base64 encoding")
}

func TestValidate_InvalidUTF8(t *testing.T) {
	_, err := Validate([]byte{0xff, 0xfe, 0xfd})
	assertValidationError(t, err, "Invalid UTF-8 encoding")
}

func TestValidate_Oversize(t *testing.T) {
	_, err := Validate(bytes.Repeat([]byte("a"), MaxCSVBytes+1))
	assertValidationError(t, err, "File size exceeds maximum limit of 10MB")
}

func TestValidate_Empty(t *testing.T) {
	_, err := Validate([]byte{})
	assertValidationError(t, err, "Empty CSV file")
}

func TestValidate_MalformedCSV(t *testing.T) {
	raw := []byte("Signature,Human Time\n\"unterminated,2024-03-01 12:00:00\n")
	_, err := Validate(raw)
	assertValidationError(t, err, "Invalid CSV format")
}

func TestValidate_MissingRequiredColumns(t *testing.T) {
	raw := []byte("Token1 Address,Token1 Amount\nSOL,2.5\n")
	_, err := Validate(raw)
	assertValidationError(t, err, "Missing required columns: Signature, Human Time")
}

func TestValidate_InvalidDate(t *testing.T) {
	raw := testutil.BuildCSV(true, testutil.CreateSwapRow(testutil.WithHumanTime("yesterday at noon")))
	_, err := Validate(raw)
	assertValidationError(t, err, "Invalid date format in 'Human Time' column")
}

func TestValidate_InvalidSignature(t *testing.T) {
	raw := testutil.BuildCSV(true, testutil.CreateSwapRow(testutil.WithSignature("sig with spaces!")))
	_, err := Validate(raw)
	assertValidationError(t, err, "Invalid signature format")
}

func TestValidate_EmptySignatureRejected(t *testing.T) {
	raw := testutil.BuildCSV(true, testutil.CreateSwapRow(testutil.WithSignature("")))
	_, err := Validate(raw)
	assertValidationError(t, err, "Invalid signature format")
}

func TestParseTimestamp_AcceptedLayouts(t *testing.T) {
	values := []string{
		"2024-03-01 12:00:00",
		"2024-03-01 12:00:00.123456",
		"01/03/2024 12:00:00",
		"03/01/2024 12:00:00",
		"2024-03-01T12:00:00Z",
	}

	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			if _, err := ParseTimestamp(v); err != nil {
				t.Errorf("expected %q to parse, got %v", v, err)
			}
		})
	}
}

func TestParseTimestamp_Rejected(t *testing.T) {
	values := []string{"", "not a date", "2024-03-01", "12:00:00"}

	for _, v := range values {
		if _, err := ParseTimestamp(v); err == nil {
			t.Errorf("expected %q to fail", v)
		}
	}
}

func TestDecodeBase64_RoundTrip(t *testing.T) {
	payload := []byte("Signature,Human Time\n")
	decoded, err := DecodeBase64(base64.StdEncoding.EncodeToString(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Errorf("round trip mismatch: %q", decoded)
	}
}
