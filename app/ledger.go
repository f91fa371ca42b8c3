package app

// Ledger is the running points balance. It never goes negative.
type Ledger struct {
	balance int
}

// NewLedger starts a ledger at balance, floored at zero.
func NewLedger(balance int) *Ledger {
	if balance < 0 {
		balance = 0
	}
	return &Ledger{balance: balance}
}

func (l *Ledger) Balance() int {
	return l.balance
}

// Credit adds amount and returns the applied delta.
// Negative amounts are ignored.
func (l *Ledger) Credit(amount int) int {
	if amount <= 0 {
		return 0
	}
	l.balance += amount
	return amount
}

// Debit subtracts amount, flooring the balance at zero, and returns the
// applied delta (zero or negative). The part of a debit beyond the balance
// is dropped, not carried as debt.
func (l *Ledger) Debit(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > l.balance {
		amount = l.balance
	}
	l.balance -= amount
	return -amount
}

// CanAfford reports whether the balance covers cost.
func (l *Ledger) CanAfford(cost int) bool {
	return l.balance >= cost
}
