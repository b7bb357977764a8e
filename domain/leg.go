package domain

import (
	"fmt"
	"time"
)

const (
	LegStateNew       = "new"
	LegStateOngoing   = "ongoing"
	LegStateSent      = "sent"
	LegStateRetriable = "retriable"
	LegStateError     = "error"
	LegStateRejected  = "rejected"
)

// ErrorLegNotSettleable is returned by a sender for a leg it can never move,
// such as one paid from a wallet it does not control. Such legs are not
// retried.
var ErrorLegNotSettleable = fmt.Errorf("leg can not be settled by this sender")

type LegKind string

const (
	LegKindTax   LegKind = "tax"
	LegKindDev   LegKind = "dev"
	LegKindNet   LegKind = "net"
	LegKindPrize LegKind = "prize"
)

// TransferLeg is one token movement requested by a committed invocation.
// Legs are staged in the same commit as the ledger record and settled later.
type TransferLeg struct {
	Id          int64      `json:"id"`
	Ledger      string     `json:"ledger"`
	Kind        LegKind    `json:"kind"`
	Source      Identity   `json:"source"`
	Destination Identity   `json:"destination"`
	Amount      uint64     `json:"amount"`
	State       string     `json:"state"`
	Retried     int        `json:"retried"`
	CreateTime  time.Time  `json:"create_time"`
	RetryTime   *time.Time `json:"retry_time"`
	SentTime    *time.Time `json:"sent_time"`
}

// IsMovement reports whether settling the leg would move any tokens.
func (l TransferLeg) IsMovement() bool {
	return l.Amount > 0 && l.Source != l.Destination
}

// StageableLegs drops the legs that would not move tokens.
func StageableLegs(legs []TransferLeg) []TransferLeg {
	res := make([]TransferLeg, 0, len(legs))
	for _, leg := range legs {
		if leg.IsMovement() {
			res = append(res, leg)
		}
	}
	return res
}
