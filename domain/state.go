package domain

import (
	"fmt"
	"strings"

	"github.com/tonkeeper/tongo"
)

const (
	InitialSupply    = uint64(1_000_000)
	DevFeePercentage = uint64(1)
	MaxTaxPercentage = 100
)

// Identity is the address of an account taking part in the ledger: the
// authority, payers, holders and the tax, dev and prize wallets.
type Identity = tongo.AccountID

// LedgerState is the single persisted record of a program instance. It is
// owned by the program and only changed through Initialize, ProcessTransaction
// and SelectRandomWallet.
type LedgerState struct {
	Authority     Identity
	TaxPercentage uint8
	TotalTokens   uint64
	// Holders keeps insertion order; selection indexes into it.
	Holders []Identity
	// SelectedWallet is nil until a draw over a non-empty holder set succeeds.
	SelectedWallet *Identity
}

// LedgerRecord is a LedgerState as stored by a host, along with the version
// the host uses to reject commits made against an outdated copy.
type LedgerRecord struct {
	Address string
	State   *LedgerState
	Version int64
}

// Initialize creates the state of a new program instance. existing is the
// state currently stored for the instance, or nil when there is none.
func Initialize(existing *LedgerState, authority Identity, taxPercentage int) (*LedgerState, error) {
	if existing != nil {
		return nil, NewLedgerError(KindAlreadyInitialized, "ledger already created by %v", existing.Authority.ToRaw())
	}
	if taxPercentage < 0 || taxPercentage > MaxTaxPercentage {
		return nil, NewLedgerError(KindInvalidParameter, "tax percentage %v is out of range [0, %v]", taxPercentage, MaxTaxPercentage)
	}

	return &LedgerState{
		Authority:     authority,
		TaxPercentage: uint8(taxPercentage),
		TotalTokens:   InitialSupply,
		Holders:       make([]Identity, 0),
	}, nil
}

func (s *LedgerState) HasHolder(id Identity) bool {
	for _, h := range s.Holders {
		if h == id {
			return true
		}
	}
	return false
}

func (s *LedgerState) IsSelected() bool {
	return s.SelectedWallet != nil
}

// Clone returns a deep copy, so that an operation can be applied to the copy
// and discarded if anything fails before commit.
func (s *LedgerState) Clone() *LedgerState {
	c := *s
	c.Holders = make([]Identity, len(s.Holders))
	copy(c.Holders, s.Holders)
	if s.SelectedWallet != nil {
		selected := *s.SelectedWallet
		c.SelectedWallet = &selected
	}
	return &c
}

// Validate checks the invariants a decoded record must satisfy.
func (s *LedgerState) Validate() error {
	if s.TaxPercentage > MaxTaxPercentage {
		return NewLedgerError(KindInvalidParameter, "tax percentage %v exceeds %v", s.TaxPercentage, MaxTaxPercentage)
	}

	seen := make(map[Identity]struct{}, len(s.Holders))
	for _, h := range s.Holders {
		if _, exist := seen[h]; exist {
			return fmt.Errorf("holder %v appears more than once", h.ToRaw())
		}
		seen[h] = struct{}{}
	}

	if s.SelectedWallet != nil {
		if _, exist := seen[*s.SelectedWallet]; !exist {
			return fmt.Errorf("selected wallet %v is not a holder", s.SelectedWallet.ToRaw())
		}
	}
	return nil
}

// ParseIdentity accepts either the raw form "0:<hex>" or the user-friendly
// base64url form of an address.
func ParseIdentity(address string) (Identity, error) {
	address = strings.TrimSpace(address)
	if strings.Contains(address, ":") {
		return tongo.AccountIDFromRaw(address)
	}

	id, err := tongo.AccountIDFromBase64Url(address)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid address '%v': %w", address, err)
	}
	return id, nil
}
