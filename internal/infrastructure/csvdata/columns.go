package csvdata

import (
	"strings"

	"github.com/solscope/token-analyzer/internal/domain/entities"
)

// Slot identifies the logical column a header resolves to.
type Slot int

const (
	SlotNone Slot = iota
	SlotToken1Address
	SlotToken1Amount
	SlotToken2Address
	SlotToken2Amount
	SlotWallet
)

// ClassifyHeader maps a header name to a logical slot using
// case-insensitive substring matching. A header matching several rules
// binds only the first one, in token1-address, token1-amount,
// token2-address, token2-amount, wallet order.
func ClassifyHeader(name string) Slot {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "token1") && strings.Contains(lower, "address"):
		return SlotToken1Address
	case strings.Contains(lower, "token1") && strings.Contains(lower, "amount"):
		return SlotToken1Amount
	case strings.Contains(lower, "token2") && strings.Contains(lower, "address"):
		return SlotToken2Address
	case strings.Contains(lower, "token2") && strings.Contains(lower, "amount"):
		return SlotToken2Amount
	case strings.Contains(lower, "wallet"):
		return SlotWallet
	}
	return SlotNone
}

// InferColumns resolves the token-leg columns from the header row.
// When duplicate headers match the same rule the last match wins. The
// wallet slot is best-effort; its absence is not an error.
func InferColumns(headers []string) (entities.ColumnMap, error) {
	var cm entities.ColumnMap
	for _, h := range headers {
		switch ClassifyHeader(h) {
		case SlotToken1Address:
			cm.Token1Address = h
		case SlotToken1Amount:
			cm.Token1Amount = h
		case SlotToken2Address:
			cm.Token2Address = h
		case SlotToken2Amount:
			cm.Token2Amount = h
		case SlotWallet:
			cm.Wallet = h
		}
	}

	var missing []string
	if cm.Token1Address == "" {
		missing = append(missing, "token1_address")
	}
	if cm.Token1Amount == "" {
		missing = append(missing, "token1_amount")
	}
	if cm.Token2Address == "" {
		missing = append(missing, "token2_address")
	}
	if cm.Token2Amount == "" {
		missing = append(missing, "token2_amount")
	}
	if len(missing) > 0 {
		return entities.ColumnMap{}, entities.NewValidationError(
			"Missing required token columns: %s", strings.Join(missing, ", "))
	}

	return cm, nil
}
