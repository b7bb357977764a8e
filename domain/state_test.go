package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	authority := testIdentity(7)

	s, err := Initialize(nil, authority, 5)
	require.NoError(t, err)
	assert.Equal(t, authority, s.Authority)
	assert.Equal(t, uint8(5), s.TaxPercentage)
	assert.Equal(t, InitialSupply, s.TotalTokens)
	assert.Empty(t, s.Holders)
	assert.Nil(t, s.SelectedWallet)
	assert.False(t, s.IsSelected())
}

func TestInitializeBounds(t *testing.T) {
	for _, pct := range []int{0, 1, 50, 100} {
		_, err := Initialize(nil, testIdentity(1), pct)
		assert.NoError(t, err, "pct %v", pct)
	}

	for _, pct := range []int{-1, 101, 255, 1000} {
		_, err := Initialize(nil, testIdentity(1), pct)
		assert.ErrorIs(t, err, ErrorInvalidParameter, "pct %v", pct)
	}
}

func TestInitializeTwice(t *testing.T) {
	existing := testState(t, 5)
	before := existing.Clone()

	_, err := Initialize(existing, testIdentity(9), 10)
	assert.ErrorIs(t, err, ErrorAlreadyInitialized)
	assert.Equal(t, KindAlreadyInitialized, KindOf(err))
	assert.Equal(t, before, existing)
}

func TestClone(t *testing.T) {
	s := testState(t, 5)
	s.Holders = append(s.Holders, testIdentity(1), testIdentity(2))
	selected := testIdentity(2)
	s.SelectedWallet = &selected

	c := s.Clone()
	require.Equal(t, s, c)

	c.Holders[0] = testIdentity(3)
	*c.SelectedWallet = testIdentity(1)
	c.TotalTokens = 1

	assert.Equal(t, testIdentity(1), s.Holders[0])
	assert.Equal(t, testIdentity(2), *s.SelectedWallet)
	assert.Equal(t, InitialSupply, s.TotalTokens)
}

func TestValidate(t *testing.T) {
	s := testState(t, 5)
	s.Holders = []Identity{testIdentity(1), testIdentity(2)}
	assert.NoError(t, s.Validate())

	dup := s.Clone()
	dup.Holders = append(dup.Holders, testIdentity(1))
	assert.Error(t, dup.Validate())

	stranger := testIdentity(3)
	notHolder := s.Clone()
	notHolder.SelectedWallet = &stranger
	assert.Error(t, notHolder.Validate())

	badTax := s.Clone()
	badTax.TaxPercentage = 101
	assert.ErrorIs(t, badTax.Validate(), ErrorInvalidParameter)
}

func TestParseIdentity(t *testing.T) {
	raw := "0:" + "83dfd552e63729b472fcbcc8c45ebcc6691702558b68ec7527e1ba403a0f31a8"
	id, err := ParseIdentity(raw)
	require.NoError(t, err)
	assert.Equal(t, int32(0), id.Workchain)
	assert.Equal(t, raw, id.ToRaw())

	_, err = ParseIdentity("not an address")
	assert.Error(t, err)
}

func TestLedgerErrorMatching(t *testing.T) {
	err := NewLedgerError(KindInsufficientFunds, "deduction %v exceeds total tokens %v", 12, 10)

	assert.ErrorIs(t, err, ErrorInsufficientFunds)
	assert.NotErrorIs(t, err, ErrorInvalidAmount)
	assert.Equal(t, "InsufficientFunds: deduction 12 exceeds total tokens 10", err.Error())

	wrapped := errors.Join(errors.New("committing"), err)
	assert.ErrorIs(t, wrapped, ErrorInsufficientFunds)
	assert.Equal(t, KindInsufficientFunds, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, "Unauthorized", ErrorUnauthorized.Error())
}
