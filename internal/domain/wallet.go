package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// LineSeparator separates logical rows in multi-line responses
const LineSeparator = "\n"

// MoneyScale is the number of fractional digits kept on cash credited from holdings
// and on reported winnings. Lot quantities are not rounded.
const MoneyScale = 8

// Bounds on client supplied amounts
const (
	maxAmountScale    = 18
	maxAmountExponent = 15
)

// maxAmount is the largest accepted amount, exclusive
var maxAmount = decimal.New(1, maxAmountExponent)

// ParseAmount parses a client supplied money amount.
// Malformed text and values outside (-1e15, 1e15) or with more than 18 fractional
// digits fail with ErrInvalidAmount. The sign is left for the ledger to judge.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	// exponent first: comparing a huge exponent would rescale the coefficient
	if amount.Exponent() < -maxAmountScale || amount.Exponent() > maxAmountExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.NumDigits() > maxAmountScale+maxAmountExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// AssetFinder resolves an asset id to its current listing
type AssetFinder interface {
	Find(id string) (Asset, bool)
}

// Wallet is the balance and holdings of a single user.
//
// Each buy is kept as a distinct lot of quantity spend/price. The cost basis of
// an asset is the price paid the first time it was bought; later buys of the
// same id add lots but do not move the basis. An id is present in lots if and
// only if it is present in costBasis, and selling removes it from both.
type Wallet struct {
	balance   decimal.Decimal
	lots      map[string][]decimal.Decimal
	costBasis map[string]decimal.Decimal
}

// NewWallet creates an empty wallet with zero balance
func NewWallet() *Wallet {
	return &Wallet{
		balance:   decimal.Zero,
		lots:      make(map[string][]decimal.Decimal),
		costBasis: make(map[string]decimal.Decimal),
	}
}

// Balance returns the current cash balance
func (w *Wallet) Balance() decimal.Decimal { return w.balance }

// Quantity returns the summed lot quantity held for id
func (w *Wallet) Quantity(id string) decimal.Decimal {
	return decimal.Sum(decimal.Zero, w.lots[id]...)
}

// Holds reports whether any lot of id is held
func (w *Wallet) Holds(id string) bool {
	_, ok := w.lots[id]
	return ok
}

// ─── transactions ─────────────────────────────────────────────────────────────

// Deposit adds amount to the balance
func (w *Wallet) Deposit(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	w.balance = w.balance.Add(amount)
	return nil
}

// Buy spends the given amount on asset id at its current catalog price
func (w *Wallet) Buy(id string, spend decimal.Decimal, catalog AssetFinder) error {
	if spend.IsNegative() {
		return ErrNegativeAmount
	}
	if spend.GreaterThan(w.balance) {
		return ErrInsufficientBalance
	}

	asset, ok := catalog.Find(id)
	if !ok || !asset.Price.IsPositive() {
		return ErrAssetNotFound
	}

	if _, held := w.lots[asset.ID]; !held {
		w.lots[asset.ID] = nil
		w.costBasis[asset.ID] = asset.Price
	}
	w.lots[asset.ID] = append(w.lots[asset.ID], spend.Div(asset.Price))
	w.balance = w.balance.Sub(spend)
	return nil
}

// Sell liquidates the whole position in id at its current catalog price.
// Partial sells are not supported.
func (w *Wallet) Sell(id string, catalog AssetFinder) error {
	if !w.Holds(id) {
		return ErrNotPurchased
	}

	asset, ok := catalog.Find(id)
	if !ok {
		return ErrAssetNotFound
	}

	credit := w.Quantity(id).Mul(asset.Price).Round(MoneyScale)
	w.balance = w.balance.Add(credit)
	delete(w.lots, id)
	delete(w.costBasis, id)
	return nil
}

// ─── summaries ────────────────────────────────────────────────────────────────

// Summary renders the balance and the held quantity of every asset
func (w *Wallet) Summary() string {
	var sb strings.Builder
	sb.WriteString("Wallet summary : ")
	sb.WriteString(LineSeparator)
	sb.WriteString("Current balance: $")
	sb.WriteString(FormatAmount(w.balance))
	sb.WriteString(LineSeparator)
	for _, id := range w.heldIDs() {
		sb.WriteString(id)
		sb.WriteString(": ")
		sb.WriteString(FormatAmount(w.Quantity(id)))
		sb.WriteString(LineSeparator)
	}
	return sb.String()
}

// Winnings is the aggregate profit or loss of all holdings against their cost basis.
// Assets no longer listed in the catalog contribute nothing.
func (w *Wallet) Winnings(catalog AssetFinder) decimal.Decimal {
	winnings := decimal.Zero
	for _, id := range w.heldIDs() {
		asset, ok := catalog.Find(id)
		if !ok {
			continue
		}
		winnings = winnings.Add(w.Quantity(id).Mul(asset.Price.Sub(w.costBasis[id])))
	}
	return winnings.Round(MoneyScale)
}

// OverallSummary renders the aggregate profit or loss
func (w *Wallet) OverallSummary(catalog AssetFinder) string {
	return "Overall winnings: $" + FormatAmount(w.Winnings(catalog)) + LineSeparator
}

func (w *Wallet) heldIDs() []string {
	ids := make([]string, 0, len(w.lots))
	for id := range w.lots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ─── persistence ──────────────────────────────────────────────────────────────

// WalletSnapshot is a detached copy of a wallet used by account stores
type WalletSnapshot struct {
	Balance   decimal.Decimal              `json:"balance"`
	Lots      map[string][]decimal.Decimal `json:"lots"`
	CostBasis map[string]decimal.Decimal   `json:"cost_basis"`
}

// Snapshot returns a deep copy of the wallet state
func (w *Wallet) Snapshot() WalletSnapshot {
	snap := WalletSnapshot{
		Balance:   w.balance,
		Lots:      make(map[string][]decimal.Decimal, len(w.lots)),
		CostBasis: make(map[string]decimal.Decimal, len(w.costBasis)),
	}
	for id, lots := range w.lots {
		snap.Lots[id] = append([]decimal.Decimal(nil), lots...)
	}
	for id, price := range w.costBasis {
		snap.CostBasis[id] = price
	}
	return snap
}

// RestoreWallet rebuilds a wallet from a snapshot.
// Entries violating the lots/cost-basis pairing are dropped.
func RestoreWallet(snap WalletSnapshot) *Wallet {
	w := NewWallet()
	if !snap.Balance.IsNegative() {
		w.balance = snap.Balance
	}
	for id, lots := range snap.Lots {
		basis, ok := snap.CostBasis[id]
		if !ok || len(lots) == 0 {
			continue
		}
		w.lots[id] = append([]decimal.Decimal(nil), lots...)
		w.costBasis[id] = basis
	}
	return w
}

// FormatAmount renders integral values with one fractional digit (500.0) and
// everything else with its exact decimal digits.
func FormatAmount(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(1)
	}
	return d.String()
}
