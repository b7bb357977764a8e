package domain

import (
	"github.com/holiman/uint256"
)

type TransferRequest struct {
	// Signer is the identity the host authenticated for this invocation.
	Signer     Identity
	Amount     uint64
	TaxWallet  Identity
	DevWallet  Identity
	UserWallet Identity
	// Recipient receives what is left after tax and dev fee. When nil the
	// remainder stays with UserWallet.
	Recipient *Identity
}

type TransferReceipt struct {
	Amount      uint64
	TaxAmount   uint64
	DevFee      uint64
	NetAmount   uint64
	TotalTokens uint64
	NewHolder   bool
	Legs        []TransferLeg
}

// ComputeSplit returns the tax and the development fee taken from amount.
// Products are computed in 256 bits before dividing, so the result is exact
// for every uint64 amount. The dev fee is capped by what is left after tax,
// which only matters at a 100% tax rate.
func ComputeSplit(amount uint64, taxPercentage uint8) (taxAmount uint64, devFee uint64) {
	a := uint256.NewInt(amount)
	hundred := uint256.NewInt(100)

	tax := new(uint256.Int).Mul(a, uint256.NewInt(uint64(taxPercentage)))
	tax.Div(tax, hundred)

	dev := new(uint256.Int).Mul(a, uint256.NewInt(DevFeePercentage))
	dev.Div(dev, hundred)

	rest := new(uint256.Int).Sub(a, tax)
	if dev.Gt(rest) {
		dev.Set(rest)
	}

	return tax.Uint64(), dev.Uint64()
}

// ProcessTransaction applies a taxed transfer to state. Nothing in state is
// touched unless the call succeeds.
func ProcessTransaction(state *LedgerState, req TransferRequest) (*TransferReceipt, error) {
	if req.Amount == 0 {
		return nil, NewLedgerError(KindInvalidAmount, "amount must be positive")
	}
	if req.Signer != req.UserWallet {
		return nil, NewLedgerError(KindUnauthorized, "transfer from %v must be signed by the payer", req.UserWallet.ToRaw())
	}

	taxAmount, devFee := ComputeSplit(req.Amount, state.TaxPercentage)

	deduction := new(uint256.Int).Add(uint256.NewInt(taxAmount), uint256.NewInt(devFee))
	if deduction.Gt(uint256.NewInt(state.TotalTokens)) {
		return nil, NewLedgerError(KindInsufficientFunds, "deduction %v exceeds total tokens %v", deduction.ToBig().String(), state.TotalTokens)
	}

	recipient := req.UserWallet
	if req.Recipient != nil {
		recipient = *req.Recipient
	}

	netAmount := req.Amount - taxAmount - devFee
	state.TotalTokens -= taxAmount + devFee

	newHolder := !state.HasHolder(req.UserWallet)
	if newHolder {
		state.Holders = append(state.Holders, req.UserWallet)
	}

	return &TransferReceipt{
		Amount:      req.Amount,
		TaxAmount:   taxAmount,
		DevFee:      devFee,
		NetAmount:   netAmount,
		TotalTokens: state.TotalTokens,
		NewHolder:   newHolder,
		Legs: []TransferLeg{
			{Kind: LegKindTax, Source: req.UserWallet, Destination: req.TaxWallet, Amount: taxAmount},
			{Kind: LegKindDev, Source: req.UserWallet, Destination: req.DevWallet, Amount: devFee},
			{Kind: LegKindNet, Source: req.UserWallet, Destination: recipient, Amount: netAmount},
		},
	}, nil
}
