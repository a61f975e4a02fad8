package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalCents(t *testing.T) {
	assert.Equal(t, 1999, Order{TotalAmount: 19.99}.TotalCents())
	assert.Equal(t, 500, Order{TotalAmount: 5}.TotalCents())
	assert.Equal(t, 1234, Order{TotalAmount: 12.34}.TotalCents())
	assert.Equal(t, 0, Order{}.TotalCents())
	// rounding absorbs binary representation error on exact cent values
	assert.Equal(t, 8,
		Order{TotalAmount: 0.07}.TotalCents()+Order{TotalAmount: 0.01}.TotalCents())
}

func TestPaymentGuards(t *testing.T) {
	cases := []struct {
		status        string
		canPaid       bool
		canAuth       bool
		canCancel     bool
		canRefund     bool
		canPartRefund bool
	}{
		{StatusPending, true, true, true, false, false},
		{StatusAuthorized, true, false, true, false, false},
		{StatusPaid, false, false, false, true, true},
		{StatusCancelled, false, false, false, false, false},
		{StatusRefunded, false, false, false, false, false},
		{StatusPartiallyRefunded, false, false, false, false, true},
	}
	for _, tc := range cases {
		o := Order{Status: tc.status, TotalAmount: 100}
		assert.Equal(t, tc.canPaid, o.CanMarkPaid(), "CanMarkPaid in %s", tc.status)
		assert.Equal(t, tc.canAuth, o.CanMarkAuthorized(), "CanMarkAuthorized in %s", tc.status)
		assert.Equal(t, tc.canCancel, o.CanCancel(), "CanCancel in %s", tc.status)
		assert.Equal(t, tc.canRefund, o.CanRefund(), "CanRefund in %s", tc.status)
		assert.Equal(t, tc.canPartRefund, o.CanPartialRefund(10), "CanPartialRefund in %s", tc.status)
	}
}

func TestCanPartialRefundBounds(t *testing.T) {
	o := Order{Status: StatusPaid, TotalAmount: 100}

	assert.False(t, o.CanPartialRefund(0))
	assert.False(t, o.CanPartialRefund(-5))
	assert.True(t, o.CanPartialRefund(100))
	assert.False(t, o.CanPartialRefund(100.01))

	o.Status = StatusPartiallyRefunded
	o.RefundedAmount = 60
	assert.True(t, o.CanPartialRefund(40))
	assert.False(t, o.CanPartialRefund(40.01))
}
