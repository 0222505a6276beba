package identity

import (
	"testing"

	"github.com/expenseflow/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCompany(t *testing.T) {
	t.Run("creates active company", func(t *testing.T) {
		c, err := NewCompany("Acme Corp", "US", valueobject.EUR)
		require.NoError(t, err)
		assert.Equal(t, "Acme Corp", c.Name)
		assert.Equal(t, "US", c.Country)
		assert.Equal(t, valueobject.EUR, c.DefaultCurrency)
		assert.True(t, c.IsActive)
		assert.NotEmpty(t, c.GetDomainEvents())
	})

	t.Run("defaults the currency when unset", func(t *testing.T) {
		c, err := NewCompany("Acme Corp", "US", "")
		require.NoError(t, err)
		assert.Equal(t, valueobject.DefaultCurrency, c.DefaultCurrency)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewCompany("", "US", valueobject.USD)
		require.Error(t, err)
	})
}

func TestCompanyMutations(t *testing.T) {
	c, err := NewCompany("Acme Corp", "US", valueobject.USD)
	require.NoError(t, err)

	require.NoError(t, c.Rename("Acme Holdings"))
	assert.Equal(t, "Acme Holdings", c.Name)
	require.Error(t, c.Rename(" "))

	require.NoError(t, c.SetDefaultCurrency(valueobject.GBP))
	assert.Equal(t, valueobject.GBP, c.DefaultCurrency)
	require.Error(t, c.SetDefaultCurrency(""))

	c.Deactivate()
	assert.False(t, c.IsActive)
}
