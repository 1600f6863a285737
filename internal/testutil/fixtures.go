package testutil

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
)

// Common test addresses and signatures
const (
	TargetToken   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	OtherToken    = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
	AliceWallet   = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"
	BobWallet     = "7nYt5k2MP9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZ"
	CharlieWallet = "4mPqRsTuVwXyZaBcDeFgHiJkLmNoPqRsTuVwXyZaBcDe"

	TestSignature = "5J8sUoFzG2W1q3v9X7yZa4bCdEfGh6kLmNpQrStUvWxY"
)

// SwapRow is one CSV row of a swap export.
type SwapRow struct {
	Signature     string
	HumanTime     string
	Token1Address string
	Token1Amount  string
	Token2Address string
	Token2Amount  string
	Wallet        string
}

// CreateSwapRow creates a qualifying SOL -> target-token row with
// default values
func CreateSwapRow(opts ...SwapRowOption) SwapRow {
	row := SwapRow{
		Signature:     TestSignature,
		HumanTime:     "2024-03-01 12:00:00",
		Token1Address: "SOL",
		Token1Amount:  "2.5",
		Token2Address: TargetToken,
		Token2Amount:  "16953.45",
		Wallet:        AliceWallet,
	}

	for _, opt := range opts {
		opt(&row)
	}

	return row
}

type SwapRowOption func(*SwapRow)

func WithSignature(sig string) SwapRowOption {
	return func(r *SwapRow) {
		r.Signature = sig
	}
}

func WithHumanTime(ts string) SwapRowOption {
	return func(r *SwapRow) {
		r.HumanTime = ts
	}
}

func WithToken1(address, amount string) SwapRowOption {
	return func(r *SwapRow) {
		r.Token1Address = address
		r.Token1Amount = amount
	}
}

func WithToken2(address, amount string) SwapRowOption {
	return func(r *SwapRow) {
		r.Token2Address = address
		r.Token2Amount = amount
	}
}

func WithWallet(wallet string) SwapRowOption {
	return func(r *SwapRow) {
		r.Wallet = wallet
	}
}

// BuildCSV renders rows into a CSV payload with the standard export
// header. The wallet column is omitted when withWallet is false.
func BuildCSV(withWallet bool, rows ...SwapRow) []byte {
	header := []string{"Signature", "Human Time", "Token1 Address", "Token1 Amount", "Token2 Address", "Token2 Amount"}
	if withWallet {
		header = append(header, "Wallet")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(header)
	for _, row := range rows {
		record := []string{row.Signature, row.HumanTime, row.Token1Address, row.Token1Amount, row.Token2Address, row.Token2Amount}
		if withWallet {
			record = append(record, row.Wallet)
		}
		_ = w.Write(record)
	}
	w.Flush()

	return buf.Bytes()
}

// BuildCSVBase64 renders rows into a base64 CSV payload.
func BuildCSVBase64(withWallet bool, rows ...SwapRow) string {
	return base64.StdEncoding.EncodeToString(BuildCSV(withWallet, rows...))
}
