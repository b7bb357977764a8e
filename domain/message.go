package domain

import (
	"github.com/tonkeeper/tongo/tlb"
)

// TlbJettonTransfer is the internal message body a jetton wallet owner sends
// to move jettons.
type TlbJettonTransfer struct {
	Magic               tlb.Magic `tlb:"transfer#0f8a7ea5"`
	QueryId             tlb.Uint64
	Amount              tlb.VarUInteger16
	Destination         tlb.MsgAddress
	ResponseDestination tlb.MsgAddress
	CustomPayload       tlb.Maybe[tlb.Ref[tlb.Any]]
	ForwardTonAmount    tlb.VarUInteger16
	ForwardPayload      tlb.EitherRef[tlb.Any]
}
