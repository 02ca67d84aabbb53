package finagle

import (
	"github.com/etnz/finagle/date"
	"github.com/shopspring/decimal"
)

// lot represents a single purchase of a security, used for cost base calculations.
type lot struct {
	Date        date.Date
	Remaining   int64           // shares not sold yet
	CostPerUnit decimal.Decimal // purchase price
	FeePerUnit  decimal.Decimal // purchase fee spread over the purchased quantity, unrounded
}

// lots is the FIFO queue of open lots for one ticker.
//
// Consumed lots are skipped by advancing head instead of being removed from
// the slice, so the queue never shifts its content.
type lots struct {
	items []lot
	head  int
}

// buy appends a new lot at the tail of the queue.
func (l *lots) buy(on date.Date, quantity int64, price, fee decimal.Decimal) {
	l.items = append(l.items, lot{
		Date:        on,
		Remaining:   quantity,
		CostPerUnit: price,
		FeePerUnit:  fee.Div(decimal.NewFromInt(quantity)),
	})
}

// empty reports whether all lots have been consumed.
func (l *lots) empty() bool { return l.head >= len(l.items) }

// oldest returns the lot at the head of the queue. The queue must not be empty.
func (l *lots) oldest() *lot { return &l.items[l.head] }

// consume removes up to quantity shares from the oldest lot and returns the
// quantity actually taken. A lot fully consumed is popped.
func (l *lots) consume(quantity int64) int64 {
	current := l.oldest()
	matched := min(current.Remaining, quantity)
	current.Remaining -= matched
	if current.Remaining == 0 {
		l.head++
		if l.empty() {
			// reuse the backing array
			l.items, l.head = l.items[:0], 0
		}
	}
	return matched
}

// position returns the total number of shares still held.
func (l *lots) position() int64 {
	var q int64
	for _, current := range l.items[l.head:] {
		q += current.Remaining
	}
	return q
}
