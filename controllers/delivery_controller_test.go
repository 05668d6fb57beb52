package controllers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingCounters struct{}

func (failingCounters) Next(ctx context.Context, counterID string) (int, error) {
	return 0, errors.New("counter unavailable")
}

// A counter outage while booking the fee must not reach the database or
// the caller; the order stays claimed. With a nil database the test
// would panic if the insert were still attempted.
func TestRecordDeliveryFeeSkipsOnCounterFailure(t *testing.T) {
	dc := NewDeliveryController(nil, nil, nil, nil, failingCounters{}, nil, nil)

	assert.NotPanics(t, func() {
		dc.recordDeliveryFee(context.Background(), 7, 42)
	})
}

func TestAsInt(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want int
		ok   bool
	}{
		{"int", 5, 5, true},
		{"int32", int32(9), 9, true},
		{"int64", int64(12), 12, true},
		{"float64", float64(3), 3, true},
		{"string", "3", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := asInt(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
