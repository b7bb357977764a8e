package ton

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"taxtoken/domain"
	"taxtoken/domain/util"

	"github.com/tonkeeper/tongo"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/tlb"
	tgwallet "github.com/tonkeeper/tongo/wallet"
	"go.uber.org/zap"
)

const (
	OpcodeJettonTransfer = 0x0f8a7ea5

	// Nanoton attached to each jetton transfer to pay for the wallet to wallet
	// message chain. Excess is returned to the response destination.
	JettonTransferValue = 50_000_000
)

var (
	ErrorNoCustodyWallet = fmt.Errorf("custody jetton wallet is not configured")
)

type MessageSender interface {
	SendMessage(ctx context.Context, msg tgwallet.Message) error
}

// WalletSender sends messages through a tongo wallet.
type WalletSender struct {
	wallet *tgwallet.Wallet
}

func NewWalletSender(wallet *tgwallet.Wallet) *WalletSender {
	return &WalletSender{wallet: wallet}
}

func (s *WalletSender) SendMessage(ctx context.Context, msg tgwallet.Message) error {
	return s.wallet.Send(ctx, msg)
}

// JettonTransferBody builds the body of a jetton transfer of amount tokens to
// destination. responseTo receives the remaining TON.
func JettonTransferBody(queryId uint64, amount uint64, destination tongo.AccountID, responseTo tongo.AccountID) (*boc.Cell, error) {
	msg := domain.TlbJettonTransfer{
		QueryId:             tlb.Uint64(queryId),
		Amount:              tlb.VarUInteger16(*new(big.Int).SetUint64(amount)),
		Destination:         destination.ToMsgAddress(),
		ResponseDestination: responseTo.ToMsgAddress(),
		CustomPayload:       tlb.Maybe[tlb.Ref[tlb.Any]]{Exists: false},
		ForwardTonAmount:    tlb.VarUInteger16(*big.NewInt(0)),
		ForwardPayload:      tlb.EitherRef[tlb.Any]{IsRight: false, Value: tlb.Any(*boc.NewCell())},
	}

	cell := boc.NewCell()
	if err := tlb.Marshal(cell, msg); err != nil {
		return nil, err
	}
	return cell, nil
}

// JettonSender settles legs by sending jetton transfers from the custody
// jetton wallet of the ledger, signed by the driver wallet. Only legs paid by
// the driver wallet itself are sent; the others are rejected with
// domain.ErrorLegNotSettleable since custody has no claim on the payer's
// tokens.
type JettonSender struct {
	wallet       MessageSender
	walletOwner  tongo.AccountID
	jettonWallet tongo.AccountID
	logger       *zap.SugaredLogger
}

func NewJettonSender(wallet MessageSender,
	walletOwner tongo.AccountID,
	jettonWallet *tongo.AccountID,
	logger *zap.SugaredLogger) (*JettonSender, error) {
	if jettonWallet == nil {
		return nil, ErrorNoCustodyWallet
	}
	sender := &JettonSender{
		wallet:       wallet,
		walletOwner:  walletOwner,
		jettonWallet: *jettonWallet,
		logger:       logger,
	}
	return sender, nil
}

func (s *JettonSender) SendLeg(ctx context.Context, leg domain.TransferLeg) error {
	if leg.Source != s.walletOwner {
		return fmt.Errorf("%w: %v leg %v is paid by %v, custody belongs to %v",
			domain.ErrorLegNotSettleable, leg.Kind, leg.Id, leg.Source.ToRaw(), s.walletOwner.ToRaw())
	}

	queryId := uint64(time.Now().UnixNano())

	body, err := JettonTransferBody(queryId, leg.Amount, leg.Destination, s.walletOwner)
	if err != nil {
		return fmt.Errorf("building transfer body: %w", err)
	}

	msg := tgwallet.Message{
		Amount:  JettonTransferValue, //  tlb.Grams
		Address: s.jettonWallet,      //  tongo.AccountID
		Body:    body,                //  *boc.Cell
		Code:    nil,                 //  *boc.Cell
		Data:    nil,                 //  *boc.Cell
		Bounce:  true,                //  bool
		Mode:    1,                   //  uint8	/ Pay transfer fees separately from the message value /
	}

	err = s.wallet.SendMessage(ctx, msg)
	if err != nil {
		return fmt.Errorf("sending jetton transfer [leg: %v]: %w", leg.Id, err)
	}

	s.logger.Debugf("jetton transfer sent [query: %v, to: %v, amount: %v, attached: %v]",
		queryId, leg.Destination.ToRaw(), util.TokenString(leg.Amount), util.GramToTonString(JettonTransferValue))
	return nil
}

// LogSender only logs the legs. It is used when no driver wallet is
// configured, so legs can be inspected without moving tokens.
type LogSender struct {
	logger *zap.SugaredLogger
}

func NewLogSender(logger *zap.SugaredLogger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendLeg(ctx context.Context, leg domain.TransferLeg) error {
	s.logger.Infof("🔵 dry run %v leg [id: %v, from: %v, to: %v, amount: %v]",
		leg.Kind, leg.Id, leg.Source.ToRaw(), leg.Destination.ToRaw(), util.TokenString(leg.Amount))
	return nil
}
