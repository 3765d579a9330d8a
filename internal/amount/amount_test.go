package amount_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fiado/internal/amount"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "1234.56", want: "1234.56"},
		{in: "1.234,56", want: "1234.56"},
		{in: "1,234.56", want: "1234.56"},
		{in: "-588,74", want: "-588.74"},
		{in: "10,00", want: "10"},
		{in: "50000", want: "50000"},
		{in: "1.234.567", want: "1234567"},
		{in: "1,234,567", want: "1234567"},
		{in: "$ 1.500,00", want: "1500"},
		{in: " 0.10 ", want: "0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := amount.Parse(tt.in)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "1-2", "--"} {
		_, err := amount.Parse(in)
		assert.ErrorIs(t, err, amount.ErrInvalid, in)
	}
}

func TestParseEuropean(t *testing.T) {
	got, err := amount.ParseEuropean("50.000")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50000).Equal(got))

	got, err = amount.ParseEuropean("-1.234,5")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("-1234.5").Equal(got))

	_, err = amount.ParseEuropean("")
	assert.ErrorIs(t, err, amount.ErrInvalid)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.56", amount.Format(decimal.RequireFromString("1234.56"), "USD"))
	assert.Equal(t, "-$20.00", amount.Format(decimal.NewFromInt(-20), "USD"))
	assert.Equal(t, "12.50 XYZ", amount.Format(decimal.RequireFromString("12.5"), "XYZ"))
}

func TestFixed(t *testing.T) {
	assert.Equal(t, "12.50", amount.Fixed(decimal.RequireFromString("12.5"), "USD"))
	assert.Equal(t, "1500", amount.Fixed(decimal.NewFromInt(1500), "JPY"))
}
