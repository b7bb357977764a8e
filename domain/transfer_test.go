package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name    string
		amount  uint64
		pct     uint8
		wantTax uint64
		wantDev uint64
	}{
		{"five percent", 200_000, 5, 10_000, 2_000},
		{"floors both", 199, 5, 9, 1},
		{"tiny amount passes untaxed", 19, 5, 0, 0},
		{"zero tax", 1_000, 0, 0, 10},
		{"full tax clamps dev fee", 1_000, 100, 1_000, 0},
		{"ninety nine percent", 1_000, 99, 990, 10},
		{"max amount", math.MaxUint64, 50, math.MaxUint64 / 2, math.MaxUint64 / 100},
		{"max amount full tax", math.MaxUint64, 100, math.MaxUint64, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, dev := ComputeSplit(tt.amount, tt.pct)
			assert.Equal(t, tt.wantTax, tax)
			assert.Equal(t, tt.wantDev, dev)
		})
	}
}

func TestSplitNeverExceedsAmount(t *testing.T) {
	amounts := []uint64{1, 2, 99, 100, 101, 12_345, 1_000_000, math.MaxUint32, math.MaxUint64 - 1, math.MaxUint64}

	for pct := 0; pct <= MaxTaxPercentage; pct++ {
		for _, amount := range amounts {
			tax, dev := ComputeSplit(amount, uint8(pct))
			require.LessOrEqual(t, tax, amount, "pct %v amount %v", pct, amount)
			require.LessOrEqual(t, dev, amount-tax, "pct %v amount %v", pct, amount)
		}
	}
}

func TestTransferScenario(t *testing.T) {
	s := testState(t, 5)
	require.Equal(t, uint64(1_000_000), s.TotalTokens)

	alice := testIdentity(1)
	receipt, err := ProcessTransaction(s, transferFrom(alice, 200_000))
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000), receipt.TaxAmount)
	assert.Equal(t, uint64(2_000), receipt.DevFee)
	assert.Equal(t, uint64(188_000), receipt.NetAmount)
	assert.Equal(t, uint64(988_000), s.TotalTokens)
	assert.Equal(t, uint64(988_000), receipt.TotalTokens)
	assert.True(t, receipt.NewHolder)

	receipt, err = ProcessTransaction(s, transferFrom(alice, 100_000))
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000), receipt.TaxAmount)
	assert.Equal(t, uint64(1_000), receipt.DevFee)
	assert.Equal(t, uint64(982_000), s.TotalTokens)
	assert.False(t, receipt.NewHolder)

	assert.Equal(t, []Identity{alice}, s.Holders)
}

func TestTransferDecreasesTotalByDeduction(t *testing.T) {
	for pct := 0; pct <= MaxTaxPercentage; pct += 7 {
		s := testState(t, pct)
		before := s.TotalTokens

		receipt, err := ProcessTransaction(s, transferFrom(testIdentity(1), 54_321))
		require.NoError(t, err)
		assert.Equal(t, before-receipt.TaxAmount-receipt.DevFee, s.TotalTokens, "pct %v", pct)
		assert.Equal(t, receipt.Amount, receipt.TaxAmount+receipt.DevFee+receipt.NetAmount)
	}
}

func TestTransferLegs(t *testing.T) {
	s := testState(t, 5)
	alice := testIdentity(1)

	receipt, err := ProcessTransaction(s, transferFrom(alice, 200_000))
	require.NoError(t, err)
	require.Len(t, receipt.Legs, 3)

	assert.Equal(t, LegKindTax, receipt.Legs[0].Kind)
	assert.Equal(t, testIdentity(1_000_001), receipt.Legs[0].Destination)
	assert.Equal(t, uint64(10_000), receipt.Legs[0].Amount)

	assert.Equal(t, LegKindDev, receipt.Legs[1].Kind)
	assert.Equal(t, testIdentity(1_000_002), receipt.Legs[1].Destination)
	assert.Equal(t, uint64(2_000), receipt.Legs[1].Amount)

	assert.Equal(t, LegKindNet, receipt.Legs[2].Kind)
	assert.Equal(t, alice, receipt.Legs[2].Destination)
	assert.False(t, receipt.Legs[2].IsMovement())

	for _, leg := range receipt.Legs {
		assert.Equal(t, alice, leg.Source)
	}

	// Net leg pays itself back, so only tax and dev fee are staged.
	assert.Len(t, StageableLegs(receipt.Legs), 2)
}

func TestTransferToRecipient(t *testing.T) {
	s := testState(t, 5)
	bob := testIdentity(2)

	req := transferFrom(testIdentity(1), 1_000)
	req.Recipient = &bob

	receipt, err := ProcessTransaction(s, req)
	require.NoError(t, err)
	assert.Equal(t, bob, receipt.Legs[2].Destination)
	assert.Equal(t, uint64(940), receipt.Legs[2].Amount)
	assert.Len(t, StageableLegs(receipt.Legs), 3)

	// Only the payer becomes a holder.
	assert.Equal(t, []Identity{testIdentity(1)}, s.Holders)
}

func TestTransferZeroAmount(t *testing.T) {
	s := testState(t, 5)
	before := s.Clone()

	_, err := ProcessTransaction(s, transferFrom(testIdentity(1), 0))
	assert.ErrorIs(t, err, ErrorInvalidAmount)
	assert.Equal(t, before, s)
}

func TestTransferUnauthorized(t *testing.T) {
	s := testState(t, 5)
	before := s.Clone()

	req := transferFrom(testIdentity(1), 1_000)
	req.Signer = testIdentity(2)

	_, err := ProcessTransaction(s, req)
	assert.ErrorIs(t, err, ErrorUnauthorized)
	assert.Equal(t, before, s)
}

func TestTransferInsufficientFunds(t *testing.T) {
	s := testState(t, 5)
	s.Holders = append(s.Holders, testIdentity(1))
	s.TotalTokens = 10
	before := s.Clone()

	_, err := ProcessTransaction(s, transferFrom(testIdentity(2), 1_000))
	assert.ErrorIs(t, err, ErrorInsufficientFunds)
	assert.Equal(t, before, s)
}

func TestTransferDeductionEqualToTotal(t *testing.T) {
	s := testState(t, 5)
	s.TotalTokens = 60

	receipt, err := ProcessTransaction(s, transferFrom(testIdentity(1), 1_000))
	require.NoError(t, err)
	assert.Equal(t, uint64(0), receipt.TotalTokens)
	assert.Equal(t, uint64(0), s.TotalTokens)
}

func TestTransferMaxAmount(t *testing.T) {
	s := testState(t, 5)
	before := s.Clone()

	_, err := ProcessTransaction(s, transferFrom(testIdentity(1), math.MaxUint64))
	assert.ErrorIs(t, err, ErrorInsufficientFunds)
	assert.Equal(t, before, s)
}

func TestHoldersKeepFirstAppearanceOrder(t *testing.T) {
	s := testState(t, 0)
	payers := []Identity{testIdentity(3), testIdentity(1), testIdentity(2)}

	for round := 0; round < 3; round++ {
		for _, payer := range payers {
			_, err := ProcessTransaction(s, transferFrom(payer, 100))
			require.NoError(t, err)
		}
	}

	assert.Equal(t, payers, s.Holders)
}
