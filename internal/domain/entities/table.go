package entities

// Row is a single CSV record keyed by header name, case-preserved.
type Row map[string]string

// Table is a fully parsed swap-log CSV. Every row carries the same
// column set as the header.
type Table struct {
	Headers []string
	Rows    []Row
}

// ColumnMap holds the resolved header names for the token-leg columns.
// The four token slots are mandatory; Wallet is best-effort and empty
// when no wallet-like header exists.
type ColumnMap struct {
	Token1Address string
	Token1Amount  string
	Token2Address string
	Token2Amount  string
	Wallet        string
}
