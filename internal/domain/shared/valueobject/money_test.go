package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), MXN)

		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, MXN, m.Currency())
	})

	t.Run("fail with empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("parses decimal string", func(t *testing.T) {
		m, err := NewMoneyFromString("150.75", MXN)

		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("150.75")))
	})

	t.Run("fail with invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", MXN)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	t.Run("add same currency", func(t *testing.T) {
		a := NewMoneyMXN(decimal.NewFromInt(100))
		b := NewMoneyMXN(decimal.NewFromInt(50))

		sum, err := a.Add(b)

		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))
	})

	t.Run("add different currencies fails", func(t *testing.T) {
		a := NewMoneyMXN(decimal.NewFromInt(100))
		b, _ := NewMoney(decimal.NewFromInt(50), USD)

		_, err := a.Add(b)

		assert.Error(t, err)
	})

	t.Run("subtract same currency", func(t *testing.T) {
		a := NewMoneyMXN(decimal.NewFromInt(100))
		b := NewMoneyMXN(decimal.NewFromInt(30))

		diff, err := a.Subtract(b)

		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(70)))
	})

	t.Run("multiply by int", func(t *testing.T) {
		m := NewMoneyMXN(decimal.RequireFromString("25.50"))

		result := m.MultiplyByInt(4)

		assert.True(t, result.Amount().Equal(decimal.RequireFromString("102")))
	})

	t.Run("round to two places", func(t *testing.T) {
		m := NewMoneyMXN(decimal.RequireFromString("10.666"))

		assert.Equal(t, "10.67 MXN", m.Round(2).String())
	})
}

func TestMoney_Comparisons(t *testing.T) {
	t.Run("equals matches amount and currency", func(t *testing.T) {
		a := NewMoneyMXN(decimal.NewFromInt(100))
		b := NewMoneyMXN(decimal.NewFromInt(100))
		c, _ := NewMoney(decimal.NewFromInt(100), USD)

		assert.True(t, a.Equals(b))
		assert.False(t, a.Equals(c))
	})

	t.Run("less than", func(t *testing.T) {
		a := NewMoneyMXN(decimal.NewFromInt(50))
		b := NewMoneyMXN(decimal.NewFromInt(100))

		less, err := a.LessThan(b)

		require.NoError(t, err)
		assert.True(t, less)
	})

	t.Run("greater than across currencies fails", func(t *testing.T) {
		a := NewMoneyMXN(decimal.NewFromInt(50))
		b, _ := NewMoney(decimal.NewFromInt(10), USD)

		_, err := a.GreaterThan(b)

		assert.Error(t, err)
	})

	t.Run("sign predicates", func(t *testing.T) {
		assert.True(t, ZeroMXN().IsZero())
		assert.True(t, NewMoneyMXN(decimal.NewFromInt(1)).IsPositive())
		assert.True(t, NewMoneyMXN(decimal.NewFromInt(-1)).IsNegative())
	})
}

func TestMoney_String(t *testing.T) {
	m := NewMoneyMXN(decimal.RequireFromString("150.5"))

	assert.Equal(t, "150.5 MXN", m.String())
	assert.Equal(t, "150.50 MXN", m.StringFixed(2))
}
