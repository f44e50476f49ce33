// Package reconcile assigns debit/credit polarity to raw statement records
// and validates the running balance column.
//
// Balance arithmetic is the primary signal: when the previous and current
// balances bracket a candidate amount, the direction of the delta decides
// polarity. Keyword heuristics and bare balance direction are fallbacks.
// The engine never fabricates a passing balance — rows that fail the
// post-pass check are flagged, not repaired or dropped.
package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-extractor/internal/models"
	"github.com/insightdelivered/statement-extractor/internal/normalize"
)

var creditKeywords = []string{
	"transfer from", "direct credit", "fast transfer from", "deposit",
	"transfer in", "refund", "payment received", "credit",
}

var debitKeywords = []string{
	"transfer to", "direct debit", "wdl", "atm", "fee", "cash out",
	"purchase", "withdraw", "debit", "pos",
}

// Tolerance for matching a candidate amount against a balance delta:
// max(0.01, 0.0005 × amount).
func tolerance(amount decimal.Decimal) decimal.Decimal {
	prop := amount.Abs().Mul(decimal.NewFromFloat(0.0005))
	floor := decimal.NewFromFloat(0.01)
	if prop.GreaterThan(floor) {
		return prop
	}
	return floor
}

// Resolve converts raw records into canonical transactions. Running-balance
// state is threaded across the whole record sequence, so page boundaries do
// not reset it; several formats state a balance anchor only on the first page.
func Resolve(records []models.RawRecord, period models.Period) []models.Transaction {
	txns := make([]models.Transaction, 0, len(records))
	var prevBalance *decimal.Decimal

	for i := range records {
		r := &records[i]
		txn := models.Transaction{
			Date:        normalize.Date(r.DateText, period),
			Description: strings.TrimSpace(r.Description),
			Balance:     normalize.Amount(r.BalanceText),
		}

		if r.Synthetic {
			// Opening/closing balance anchors carry only a balance.
			if txn.Balance != nil {
				prevBalance = txn.Balance
			}
			txns = append(txns, txn)
			continue
		}

		debit := normalize.Amount(r.DebitText)
		credit := normalize.Amount(r.CreditText)
		amount := normalize.Amount(r.AmountText)

		switch {
		case debit != nil || credit != nil:
			// Parser already resolved polarity positionally. Zero-valued
			// cells are placeholders, and a row with both sides populated
			// is disambiguated by the balance delta so the polarity
			// exclusivity invariant holds.
			if debit != nil && debit.IsZero() && credit != nil && !credit.IsZero() {
				debit = nil
			}
			if credit != nil && credit.IsZero() && debit != nil && !debit.IsZero() {
				credit = nil
			}
			if debit != nil && credit != nil {
				debit, credit = pickSide(*debit, *credit, txn.Balance, prevBalance, txn.Description)
			}
			txn.Debit, txn.Credit = debit, credit
		case amount != nil:
			txn.Debit, txn.Credit = classify(*amount, txn.Balance, prevBalance, txn.Description)
		case txn.Balance != nil && prevBalance != nil:
			// No amount anywhere — recover it from the balance delta.
			diff := txn.Balance.Sub(*prevBalance)
			switch diff.Sign() {
			case -1:
				d := diff.Abs()
				txn.Debit = &d
			case 1:
				txn.Credit = &diff
			}
		}

		if txn.Balance != nil {
			prevBalance = txn.Balance
		}
		txns = append(txns, txn)
	}

	validate(txns)
	return txns
}

// pickSide resolves a row where both amount columns came through populated:
// the balance delta decides which side is real, keywords break remaining
// ties, and the debit side wins as a last resort.
func pickSide(d, c decimal.Decimal, balance, prev *decimal.Decimal, description string) (debit, credit *decimal.Decimal) {
	if prev != nil && balance != nil {
		switch balance.Cmp(*prev) {
		case -1:
			return &d, nil
		case 1:
			return nil, &c
		}
	}
	lower := strings.ToLower(description)
	for _, kw := range creditKeywords {
		if strings.Contains(lower, kw) {
			return nil, &c
		}
	}
	return &d, nil
}

// classify decides the polarity of a single candidate amount.
func classify(amount decimal.Decimal, balance, prev *decimal.Decimal, description string) (debit, credit *decimal.Decimal) {
	amt := amount.Abs()

	// 1. Balance arithmetic: test the debit and credit hypotheses.
	if prev != nil && balance != nil {
		tol := tolerance(amt)
		debitDelta := prev.Sub(*balance)
		creditDelta := balance.Sub(*prev)
		if debitDelta.Sub(amt).Abs().LessThanOrEqual(tol) {
			return &amt, nil
		}
		if creditDelta.Sub(amt).Abs().LessThanOrEqual(tol) {
			return nil, &amt
		}
	}

	// 2. Keyword polarity, first match wins.
	lower := strings.ToLower(description)
	for _, kw := range creditKeywords {
		if strings.Contains(lower, kw) {
			return nil, &amt
		}
	}
	for _, kw := range debitKeywords {
		if strings.Contains(lower, kw) {
			return &amt, nil
		}
	}

	// 3. Balance direction alone.
	if prev != nil && balance != nil {
		switch balance.Cmp(*prev) {
		case -1:
			return &amt, nil
		case 1:
			return nil, &amt
		default:
			if amt.IsZero() {
				zero := decimal.Zero
				return nil, &zero
			}
		}
	}

	// Unresolvable — leave both sides empty rather than guess.
	return nil, nil
}

// validate recomputes each balance delta against the resolved amount and
// flags mismatching rows.
func validate(txns []models.Transaction) {
	var prev *decimal.Decimal
	for i := range txns {
		txn := &txns[i]
		if txn.Balance == nil {
			continue
		}
		if prev != nil && !txns[i].Inconsistent {
			delta := txn.Balance.Sub(*prev)
			net := decimal.Zero
			if txn.Credit != nil {
				net = net.Add(*txn.Credit)
			}
			if txn.Debit != nil {
				net = net.Sub(*txn.Debit)
			}
			amt := net.Abs()
			if (txn.Debit != nil || txn.Credit != nil) &&
				delta.Sub(net).Abs().GreaterThan(tolerance(amt)) {
				txn.Inconsistent = true
			}
		}
		prev = txn.Balance
	}
}
