package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineAmount(t *testing.T) {
	tests := []struct {
		rate, qty, want string
	}{
		{"12.50", "4", "50"},
		{"3.333", "3", "10"},
		{"0.125", "1", "0.13"},
		{"7.10", "12.345", "87.65"},
	}

	for _, tt := range tests {
		got := LineAmount(MustMoney(tt.rate), decimal.RequireFromString(tt.qty))
		assert.True(t, MustMoney(tt.want).Equal(got), "%s x %s = %s", tt.rate, tt.qty, got)
	}
}

func TestSum(t *testing.T) {
	assert.True(t, MustMoney("30.30").Equal(Sum(MustMoney("10.10"), MustMoney("20.20"))))
	assert.True(t, Sum().IsZero())
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("19.99")
	require.NoError(t, err)
	assert.Equal(t, "19.99", m.String())

	_, err = ParseMoney("-1")
	assert.Error(t, err)

	_, err = ParseMoney("abc")
	assert.Error(t, err)
}
