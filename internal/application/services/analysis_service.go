package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solscope/token-analyzer/internal/domain/entities"
	"github.com/solscope/token-analyzer/internal/infrastructure/cache"
	"github.com/solscope/token-analyzer/internal/infrastructure/csvdata"
)

// responseCacheTTL matches the public Cache-Control max-age on the
// analyze endpoint.
const responseCacheTTL = 5 * time.Minute

// AnalysisService derives per-transaction USD valuations from a swap
// log and aggregates early-buyer exposure across wallets. One call owns
// its table and accumulators exclusively; nothing is shared across
// requests.
type AnalysisService struct {
	cache   *cache.RedisCache
	logger  *zap.Logger
	workers int
}

// NewAnalysisService creates a new analysis service. cache may be nil.
func NewAnalysisService(cache *cache.RedisCache, logger *zap.Logger) *AnalysisService {
	return &AnalysisService{
		cache:   cache,
		logger:  logger,
		workers: runtime.NumCPU(),
	}
}

// MetricValue serializes an applicable metric as a JSON number and the
// sentinel as the literal string "N/A".
type MetricValue entities.Metric

// MarshalJSON implements json.Marshaler.
func (m MetricValue) MarshalJSON() ([]byte, error) {
	if !m.Applicable {
		return json.Marshal("N/A")
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *MetricValue) UnmarshalJSON(data []byte) error {
	if string(data) == `"N/A"` {
		*m = MetricValue{}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = MetricValue{Value: f, Applicable: true}
	return nil
}

// TransactionDTO is the wire form of one valuated row. Field names
// follow the CSV export conventions the frontend expects.
type TransactionDTO struct {
	Signature      string      `json:"Signature"`
	HumanTime      string      `json:"Human Time"`
	Token2UsdPrice MetricValue `json:"TOKEN2_USD_Price"`
	MarketCapUsd   MetricValue `json:"Market_Cap_USD"`
}

// WhaleEntryDTO is the wire form of one whale-report entry.
type WhaleEntryDTO struct {
	Wallet          string `json:"Wallet"`
	TotalSol        string `json:"Total_SOL"`
	TotalUsd        string `json:"Total_USD"`
	AvgMarketCapUsd string `json:"Avg_Market_Cap_USD"`
}

// AnalysisResponse is the full analyze result.
type AnalysisResponse struct {
	Transactions []TransactionDTO `json:"transactions"`
	WhaleReport  []WhaleEntryDTO  `json:"whale_report"`
}

// AnalyzeBase64 decodes a base64 CSV payload and analyzes it.
func (s *AnalysisService) AnalyzeBase64(ctx context.Context, encoded string, req entities.AnalysisRequest) (*AnalysisResponse, error) {
	raw, err := csvdata.DecodeBase64(encoded)
	if err != nil {
		return nil, err
	}
	return s.Analyze(ctx, raw, req)
}

// Analyze validates the CSV payload, valuates every row and builds the
// whale report. Schema problems surface as ValidationError; a bad cell
// only degrades its own row.
func (s *AnalysisService) Analyze(ctx context.Context, rawCSV []byte, req entities.AnalysisRequest) (*AnalysisResponse, error) {
	cacheKey := cache.AnalysisKey(rawCSV, req)

	var cached AnalysisResponse
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached, nil
		}
	}

	table, err := csvdata.Validate(rawCSV)
	if err != nil {
		return nil, err
	}

	cols, err := csvdata.InferColumns(table.Headers)
	if err != nil {
		return nil, err
	}

	outcomes := s.evaluateRows(ctx, table, cols, req)

	transactions := make([]TransactionDTO, len(outcomes))
	for i, o := range outcomes {
		transactions[i] = TransactionDTO{
			Signature:      o.result.Signature,
			HumanTime:      o.result.HumanTime,
			Token2UsdPrice: MetricValue(o.result.Token2UsdPrice),
			MarketCapUsd:   MetricValue(o.result.MarketCapUsd),
		}
	}

	accumulators, order := foldContributions(outcomes)
	report := buildWhaleReport(accumulators, order, req.SolUsdPrice)

	response := &AnalysisResponse{
		Transactions: transactions,
		WhaleReport:  report,
	}

	s.logger.Info("Analysis complete",
		zap.Int("rows", len(transactions)),
		zap.Int("whale_wallets", len(report)),
	)

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, response, responseCacheTTL); err != nil {
			s.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return response, nil
}

// rowOutcome pairs one row's valuation with its optional whale
// contribution.
type rowOutcome struct {
	result       entities.TransactionResult
	contribution *entities.WalletContribution
}

// evaluateRows valuates rows through a bounded worker group. Rows are
// independent, so they can run in parallel; each outcome lands at its
// row index and the whale fold happens sequentially afterwards, keeping
// output order and wallet first-seen order deterministic.
func (s *AnalysisService) evaluateRows(ctx context.Context, table *entities.Table, cols entities.ColumnMap, req entities.AnalysisRequest) []rowOutcome {
	outcomes := make([]rowOutcome, len(table.Rows))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, row := range table.Rows {
		i, row := i, row
		g.Go(func() error {
			outcomes[i] = evaluateRow(row, cols, req)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

// evaluateRow decides whether a row is a SOL → target-token swap and
// derives its USD price and market cap. Coercion failures and
// non-positive divisors degrade the row to the sentinel pair instead of
// failing the batch.
func evaluateRow(row entities.Row, cols entities.ColumnMap, req entities.AnalysisRequest) rowOutcome {
	result := entities.TransactionResult{
		Signature:      row["Signature"],
		HumanTime:      row["Human Time"],
		Token2UsdPrice: entities.NotApplicable(),
		MarketCapUsd:   entities.NotApplicable(),
	}

	token1 := strings.ToLower(row[cols.Token1Address])
	token2 := strings.ToLower(row[cols.Token2Address])

	isSolLeg := token1 == "sol" || token1 == "solana"
	isTargetLeg := token2 == strings.ToLower(req.TokenAddress)
	if !isSolLeg || !isTargetLeg {
		return rowOutcome{result: result}
	}

	token1Amount, err := csvdata.ParseNumeric(row[cols.Token1Amount])
	if err != nil {
		return rowOutcome{result: result}
	}
	token2Amount, err := csvdata.ParseNumeric(row[cols.Token2Amount])
	if err != nil {
		return rowOutcome{result: result}
	}
	if token2Amount <= 0 {
		return rowOutcome{result: result}
	}

	price := (token1Amount / token2Amount) * req.SolUsdPrice
	marketCap := price * req.TotalSupply

	result.Token2UsdPrice = entities.ApplicableMetric(roundTo(price, 4))
	result.MarketCapUsd = entities.ApplicableMetric(roundTo(marketCap, 2))

	// The threshold gate and the recorded observation use the unrounded
	// market cap; rounding applies to the reported figures only.
	var contribution *entities.WalletContribution
	if marketCap < req.MarketCapThreshold {
		contribution = &entities.WalletContribution{
			Wallet:       walletKey(row, cols),
			SolAmount:    token1Amount,
			MarketCapUsd: marketCap,
		}
	}

	return rowOutcome{result: result, contribution: contribution}
}

// walletKey resolves the grouping key for a contribution. Rows without
// a usable wallet cell all group under "unknown".
func walletKey(row entities.Row, cols entities.ColumnMap) string {
	if cols.Wallet == "" {
		return "unknown"
	}
	wallet := strings.TrimSpace(row[cols.Wallet])
	if wallet == "" {
		return "unknown"
	}
	return strings.ToLower(wallet)
}

// foldContributions runs a left-to-right fold over the row outcomes,
// returning the per-wallet accumulators and the wallet first-seen
// order.
func foldContributions(outcomes []rowOutcome) (map[string]*entities.WalletAccumulator, []string) {
	accumulators := make(map[string]*entities.WalletAccumulator)
	var order []string

	for _, o := range outcomes {
		if o.contribution == nil {
			continue
		}
		acc, ok := accumulators[o.contribution.Wallet]
		if !ok {
			acc = &entities.WalletAccumulator{Wallet: o.contribution.Wallet}
			accumulators[o.contribution.Wallet] = acc
			order = append(order, o.contribution.Wallet)
		}
		acc.Add(*o.contribution)
	}

	return accumulators, order
}

// buildWhaleReport formats the accumulators and sorts them by total SOL
// invested, descending. The comparator parses the figure back out of
// the formatted string, so wallets differing only past two decimals
// rank as ties and keep first-seen order.
func buildWhaleReport(accumulators map[string]*entities.WalletAccumulator, order []string, solUsdPrice float64) []WhaleEntryDTO {
	type rankedEntry struct {
		totalSol float64
		dto      WhaleEntryDTO
	}

	ranked := make([]rankedEntry, 0, len(order))
	for _, wallet := range order {
		acc := accumulators[wallet]
		totalSol := fmt.Sprintf("%.2f SOL", acc.SolInvested)
		key, _ := strconv.ParseFloat(strings.Fields(totalSol)[0], 64)

		ranked = append(ranked, rankedEntry{
			totalSol: key,
			dto: WhaleEntryDTO{
				Wallet:          acc.Wallet,
				TotalSol:        totalSol,
				TotalUsd:        formatUsd(acc.SolInvested * solUsdPrice),
				AvgMarketCapUsd: formatMarketCap(acc.AvgMarketCap()),
			},
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].totalSol > ranked[j].totalSol
	})

	entries := make([]WhaleEntryDTO, len(ranked))
	for i, r := range ranked {
		entries[i] = r.dto
	}
	return entries
}

// formatUsd renders a currency-grouped 2-decimal dollar figure.
func formatUsd(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// formatMarketCap abbreviates market caps of a million dollars and up.
func formatMarketCap(v float64) string {
	if v >= 1_000_000 {
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	}
	return formatUsd(v)
}

// roundTo rounds half away from zero at the given number of decimal
// places.
func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
