package domain

import (
	"math"
	"sort"
	"time"
)

// CurrencyBalance is the live amount of one currency within one balance.
// Amount is in minor units and never negative.
type CurrencyBalance struct {
	ID         string
	BalanceID  string
	CurrencyID string
	Amount     int64
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Currency is optional read-model data.
	Currency *Currency
}

// NewCurrencyBalance builds a zero-amount projection row for the pair.
func NewCurrencyBalance(id string, key PairKey, now time.Time) *CurrencyBalance {
	return &CurrencyBalance{
		ID:         id,
		BalanceID:  key.BalanceID,
		CurrencyID: key.CurrencyID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Key returns the (balance, currency) pair of the row.
func (cb *CurrencyBalance) Key() PairKey {
	return PairKey{BalanceID: cb.BalanceID, CurrencyID: cb.CurrencyID}
}

// Apply mutates Amount by d. On error Amount is left unchanged.
func (cb *CurrencyBalance) Apply(d Delta, now time.Time) error {
	next, err := d.Apply(cb.Amount)
	if err != nil {
		return err
	}
	cb.Amount = next
	cb.UpdatedAt = now
	return nil
}

// GetOrCreateResult reports which branch a get-or-create took.
type GetOrCreateResult struct {
	CurrencyBalance *CurrencyBalance
	Created         bool
}

// PairKey identifies a projection row.
type PairKey struct {
	BalanceID  string
	CurrencyID string
}

// Less orders keys by balance ID, then currency ID. All row locks are taken in
// this order.
func (k PairKey) Less(o PairKey) bool {
	if k.BalanceID != o.BalanceID {
		return k.BalanceID < o.BalanceID
	}
	return k.CurrencyID < o.CurrencyID
}

func (k PairKey) String() string {
	return k.BalanceID + "/" + k.CurrencyID
}

// SortedPairKeys returns the distinct keys in lock order.
func SortedPairKeys(keys ...PairKey) []PairKey {
	seen := make(map[PairKey]struct{}, len(keys))
	out := make([]PairKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// SortedIDs returns the distinct non-empty ids in ascending order.
func SortedIDs(ids ...string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// DeltaKind is how a delta changes a projection amount.
type DeltaKind int

const (
	DeltaNone DeltaKind = iota
	DeltaCredit
	DeltaDebit
	DeltaSet
)

func (k DeltaKind) String() string {
	switch k {
	case DeltaCredit:
		return "credit"
	case DeltaDebit:
		return "debit"
	case DeltaSet:
		return "set"
	default:
		return "none"
	}
}

// Delta is a signed change to a projection amount.
type Delta struct {
	Kind   DeltaKind
	Amount int64
}

// Credit returns an increasing delta.
func Credit(amount int64) Delta { return Delta{Kind: DeltaCredit, Amount: amount} }

// Debit returns a decreasing delta.
func Debit(amount int64) Delta { return Delta{Kind: DeltaDebit, Amount: amount} }

// Set returns an absolute delta.
func Set(amount int64) Delta { return Delta{Kind: DeltaSet, Amount: amount} }

// Apply returns current changed by d. A debit below zero fails with
// ErrInsufficientFunds and never clamps.
func (d Delta) Apply(current int64) (int64, error) {
	switch d.Kind {
	case DeltaNone:
		return current, nil
	case DeltaCredit:
		if d.Amount > math.MaxInt64-current {
			return current, ErrAmountTooLarge
		}
		return current + d.Amount, nil
	case DeltaDebit:
		if d.Amount > current {
			return current, ErrInsufficientFunds
		}
		return current - d.Amount, nil
	case DeltaSet:
		if d.Amount < 0 {
			return current, ErrNegativeAmount
		}
		return d.Amount, nil
	default:
		return current, ErrInvalidArgument
	}
}

// signed returns the delta as a signed number; ok is false for DeltaSet.
func (d Delta) signed() (int64, bool) {
	switch d.Kind {
	case DeltaNone:
		return 0, true
	case DeltaCredit:
		return d.Amount, true
	case DeltaDebit:
		return -d.Amount, true
	default:
		return 0, false
	}
}

func deltaFromSigned(v int64) Delta {
	switch {
	case v > 0:
		return Credit(v)
	case v < 0:
		return Debit(-v)
	default:
		return Delta{Kind: DeltaNone}
	}
}

// Adjustment is a delta bound to the projection row it targets.
type Adjustment struct {
	Key   PairKey
	Delta Delta
}

// MergeAdjustments folds credits and debits on the same key into one net
// delta and returns the result in lock order. A DeltaSet cannot share its key
// with any other adjustment.
func MergeAdjustments(adjs ...Adjustment) ([]Adjustment, error) {
	net := make(map[PairKey]int64, len(adjs))
	sets := make(map[PairKey]Delta)
	keys := make([]PairKey, 0, len(adjs))

	for _, a := range adjs {
		_, seenNet := net[a.Key]
		_, seenSet := sets[a.Key]
		if !seenNet && !seenSet {
			keys = append(keys, a.Key)
		}

		v, ok := a.Delta.signed()
		if !ok {
			if seenNet || seenSet {
				return nil, ErrSettlementImmutable
			}
			sets[a.Key] = a.Delta
			continue
		}
		if seenSet {
			return nil, ErrSettlementImmutable
		}
		net[a.Key] += v
	}

	keys = SortedPairKeys(keys...)
	out := make([]Adjustment, 0, len(keys))
	for _, k := range keys {
		if d, ok := sets[k]; ok {
			out = append(out, Adjustment{Key: k, Delta: d})
			continue
		}
		out = append(out, Adjustment{Key: k, Delta: deltaFromSigned(net[k])})
	}
	return out, nil
}
