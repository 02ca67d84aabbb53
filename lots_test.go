package finagle

import (
	"testing"

	"github.com/etnz/finagle/date"
)

func TestLots(t *testing.T) {
	var q lots
	if !q.empty() {
		t.Fatalf("new queue is not empty")
	}
	q.buy(date.MustParse("2024-01-10"), 100, dec("10"), dec("3"))
	q.buy(date.MustParse("2024-02-10"), 50, dec("12"), dec("0"))

	if got := q.position(); got != 150 {
		t.Errorf("position() = %d, want 150", got)
	}
	if got := q.oldest().FeePerUnit; !got.Equal(dec("0.03")) {
		t.Errorf("FeePerUnit = %s, want 0.03", got)
	}

	if got := q.consume(30); got != 30 {
		t.Errorf("consume(30) = %d, want 30", got)
	}
	if got := q.oldest().Remaining; got != 70 {
		t.Errorf("oldest().Remaining = %d, want 70", got)
	}

	// consume never crosses a lot boundary.
	if got := q.consume(100); got != 70 {
		t.Errorf("consume(100) = %d, want 70", got)
	}
	if got := q.oldest().Date.String(); got != "2024-02-10" {
		t.Errorf("oldest() after pop = %s, want 2024-02-10", got)
	}

	if got := q.consume(50); got != 50 {
		t.Errorf("consume(50) = %d, want 50", got)
	}
	if !q.empty() || q.position() != 0 {
		t.Errorf("queue not empty after consuming everything")
	}

	q.buy(date.MustParse("2024-03-10"), 5, dec("1"), dec("0"))
	if got := q.position(); got != 5 {
		t.Errorf("position() after rebuy = %d, want 5", got)
	}
}
