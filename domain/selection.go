package domain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Entropy is a value supplied by the host that the caller of a draw can
// neither choose nor predict when submitting it.
type Entropy [32]byte

func (e Entropy) Hex() string {
	return hex.EncodeToString(e[:])
}

// ErrorEntropyPending is returned while the entropy a draw committed to does
// not exist yet.
var ErrorEntropyPending = fmt.Errorf("committed entropy is not available yet")

// EntropyCommitment fixes a draw before its entropy exists. Target is the
// point of the entropy source the value will be read from and Holders the
// number of registered holders, in registration order, taking part.
type EntropyCommitment struct {
	Target  uint64 `json:"target"`
	Holders int    `json:"holders"`
}

// PrizePayout describes the optional payment made to the winner of a draw.
type PrizePayout struct {
	Wallet Identity
	Amount uint64
}

type SelectionResult struct {
	// Drawn is false when there were no holders to draw from.
	Drawn       bool
	Index       int
	Winner      Identity
	HolderCount int
	Legs        []TransferLeg
}

// DrawIndex maps entropy to an index in [0, n) with equal probability for
// every index. 64-bit words are taken from sha3-256(entropy || counter) and a
// word is rejected when it falls in the short tail that would favour low
// indices. n must be positive.
func DrawIndex(entropy Entropy, n int) int {
	bound := uint64(n)
	// 2^64 mod n; words below it are rejected so the rest split evenly.
	threshold := (0 - bound) % bound

	var buf [40]byte
	copy(buf[:32], entropy[:])
	for counter := uint64(0); ; counter++ {
		binary.BigEndian.PutUint64(buf[32:], counter)
		block := sha3.Sum256(buf[:])
		for i := 0; i < len(block); i += 8 {
			w := binary.BigEndian.Uint64(block[i : i+8])
			if w >= threshold {
				return int(w % bound)
			}
		}
	}
}

// SelectRandomWallet draws one holder and records it as the selected wallet.
// A draw over an empty holder set is a no-op and not an error: the selected
// wallet stays as it was and the result reports Drawn == false.
func SelectRandomWallet(state *LedgerState, entropy Entropy, payout PrizePayout) (*SelectionResult, error) {
	return SelectAmongFirst(state, entropy, len(state.Holders), payout)
}

// SelectAmongFirst draws among the first eligible holders only. Holders are
// never removed, so the first eligible holders of a later state are the ones
// counted when a draw was committed.
func SelectAmongFirst(state *LedgerState, entropy Entropy, eligible int, payout PrizePayout) (*SelectionResult, error) {
	count := len(state.Holders)
	if count == 0 {
		return &SelectionResult{Drawn: false}, nil
	}
	if eligible <= 0 || eligible > count {
		return nil, NewLedgerError(KindInvalidParameter, "%v eligible holders out of %v", eligible, count)
	}
	count = eligible

	index := DrawIndex(entropy, count)
	winner := state.Holders[index]
	state.SelectedWallet = &winner

	result := &SelectionResult{
		Drawn:       true,
		Index:       index,
		Winner:      winner,
		HolderCount: count,
		Legs:        make([]TransferLeg, 0, 1),
	}

	if payout.Amount > 0 {
		result.Legs = append(result.Legs, TransferLeg{
			Kind:        LegKindPrize,
			Source:      payout.Wallet,
			Destination: winner,
			Amount:      payout.Amount,
		})
	}

	return result, nil
}
