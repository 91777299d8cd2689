package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	d, err := ParseMoney(" 1500.50 ")
	require.NoError(t, err)
	assert.Equal(t, "1500.50", d.StringFixed(2))

	d, err = ParseMoney("6000")
	require.NoError(t, err)
	assert.Equal(t, "6000.00", d.StringFixed(2))

	_, err = ParseMoney("10.005")
	assert.Error(t, err)

	_, err = ParseMoney("abc")
	assert.Error(t, err)

	_, err = ParseMoney("")
	assert.Error(t, err)
}

func TestMoneyEqual(t *testing.T) {
	a, _ := ParseMoney("10.50")
	b, _ := ParseMoney("10.5")
	assert.True(t, MoneyEqual(a, b))

	c, _ := ParseMoney("10.51")
	assert.False(t, MoneyEqual(a, c))
}
