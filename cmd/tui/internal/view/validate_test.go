package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositiveAmount(t *testing.T) {
	assert.NoError(t, positiveAmount("1.234,50"))
	assert.NoError(t, positiveAmount("12.5"))
	assert.Error(t, positiveAmount("0"))
	assert.Error(t, positiveAmount("-3"))
	assert.Error(t, positiveAmount("abc"))
}

func TestQuantityUpTo(t *testing.T) {
	sell := quantityUpTo(5)
	assert.NoError(t, sell("5"))
	assert.Error(t, sell("6"))
	assert.Error(t, sell("0"))
	assert.Error(t, sell(""))
	assert.Error(t, sell("1.5"))

	stock := quantityUpTo(-1)
	assert.NoError(t, stock(""))
	assert.NoError(t, stock("0"))
	assert.NoError(t, stock("1000"))
	assert.Error(t, stock("-1"))
}

func TestRequired(t *testing.T) {
	check := required("name")
	assert.NoError(t, check("Ana"))
	assert.EqualError(t, check("   "), "name cannot be empty")
}
