package usecase

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/unitcost/backend/internal/domain"
	"github.com/unitcost/backend/internal/units"
)

// Field names reported in row errors
const (
	FieldPrice    = "price"
	FieldQuantity = "quantity"
	FieldUnit     = "unit"
)

// RankingEngine converts product rows to a common base unit and orders them by value
type RankingEngine struct {
	logger *zap.Logger
}

// NewRankingEngine creates a ranking engine. A nil logger disables debug output.
func NewRankingEngine(logger *zap.Logger) *RankingEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingEngine{logger: logger}
}

// Evaluate validates every row of the session, computes its price per base unit
// and returns the survivors sorted cheapest first. Invalid rows are reported in
// the evaluation, not as an error; the only error is a session without a family.
func (e *RankingEngine) Evaluate(session *domain.Session) (*domain.Evaluation, error) {
	if session == nil || !session.Family.IsSet() {
		return nil, domain.ErrMissingUnitType
	}

	family := session.Family
	outputUnits := units.OutputUnits(family)

	result := &domain.Evaluation{
		Family:      family,
		OutputUnits: outputUnits,
		Products:    []domain.RankedProduct{},
		RowErrors:   []domain.RowError{},
	}

	for i, entry := range session.Products {
		if entry.IsBlank() {
			continue
		}

		ranked, rowErr := rankEntry(family, outputUnits, i, entry)
		if rowErr != nil {
			e.logger.Debug("row excluded from ranking",
				zap.Int("row", i+1),
				zap.String("field", rowErr.Field),
				zap.String("reason", rowErr.Reason))
			result.RowErrors = append(result.RowErrors, *rowErr)
			continue
		}
		result.Products = append(result.Products, ranked)
	}

	slices.SortStableFunc(result.Products, func(a, b domain.RankedProduct) int {
		return cmp.Compare(a.PricePerBaseUnit, b.PricePerBaseUnit)
	})

	if len(result.Products) > 0 {
		result.Products[0].BestValue = true
	}

	e.logger.Debug("session evaluated",
		zap.String("unit_type", family.String()),
		zap.Int("ranked", len(result.Products)),
		zap.Int("rejected", len(result.RowErrors)))

	return result, nil
}

// rankEntry validates a single non-blank row and derives its ranking values
func rankEntry(
	family domain.MeasurementFamily,
	outputUnits []domain.OutputUnit,
	row int,
	entry domain.ProductEntry,
) (domain.RankedProduct, *domain.RowError) {
	price, err := parseDecimal(entry.Price)
	if err != nil {
		return domain.RankedProduct{}, rowError(row, FieldPrice, "price must be a number")
	}
	if price.IsNegative() {
		return domain.RankedProduct{}, rowError(row, FieldPrice, "price must be non-negative")
	}

	quantity, err := parseDecimal(entry.Quantity)
	if err != nil {
		return domain.RankedProduct{}, rowError(row, FieldQuantity, "quantity must be a number")
	}
	if !quantity.IsPositive() {
		return domain.RankedProduct{}, rowError(row, FieldQuantity, "quantity must be positive")
	}

	symbol := strings.TrimSpace(entry.Unit)
	if symbol == "" {
		return domain.RankedProduct{}, rowError(row, FieldUnit, "unit must be selected")
	}
	unit, ok := units.Lookup(family, symbol)
	if !ok {
		return domain.RankedProduct{}, rowError(row, FieldUnit,
			fmt.Sprintf("unit %q is not recognized for type %s", symbol, family))
	}

	priceValue, _ := price.Float64()
	quantityValue, _ := quantity.Float64()
	if !isFinite(priceValue) {
		return domain.RankedProduct{}, rowError(row, FieldPrice, "price is out of range")
	}
	if !isFinite(quantityValue) || quantityValue <= 0 {
		return domain.RankedProduct{}, rowError(row, FieldQuantity, "quantity is out of range")
	}

	perBase := priceValue / (quantityValue * unit.FactorToBase)
	if !isFinite(perBase) {
		return domain.RankedProduct{}, rowError(row, FieldQuantity, "unit price is out of range")
	}

	unitPrices := make([]domain.UnitPrice, 0, len(outputUnits))
	for _, out := range outputUnits {
		amount := perBase * out.FactorFromBase
		if !isFinite(amount) {
			return domain.RankedProduct{}, rowError(row, FieldPrice, "unit price is out of range")
		}
		unitPrices = append(unitPrices, domain.UnitPrice{
			Unit:    out.Symbol,
			Amount:  amount,
			Display: FormatMoney(amount, out.Precision),
		})
	}

	return domain.RankedProduct{
		Row:              row,
		Name:             entry.DisplayName(row),
		Store:            strings.TrimSpace(entry.Store),
		URL:              strings.TrimSpace(entry.URL),
		Price:            priceValue,
		Quantity:         quantityValue,
		Unit:             unit.Symbol,
		DisplayPrice:     "$" + price.StringFixed(2),
		PricePerBaseUnit: perBase,
		UnitPrices:       unitPrices,
	}, nil
}

// FormatMoney renders an amount with a dollar sign and fixed decimal places.
// The amount is rounded half away from zero from its shortest decimal form,
// so 1.005 renders as $1.01 at two places.
func FormatMoney(amount float64, precision int) string {
	return "$" + decimal.NewFromFloat(amount).StringFixed(int32(precision))
}

// parseDecimal accepts plain decimal literals only; NaN, Inf and
// thousands separators are rejected
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty value")
	}
	return decimal.NewFromString(s)
}

func rowError(row int, field, reason string) *domain.RowError {
	return &domain.RowError{Row: row, Field: field, Reason: reason}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
