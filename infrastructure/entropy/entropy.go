package entropy

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"taxtoken/domain"
	"taxtoken/domain/model"

	"github.com/tonkeeper/tongo"
	"github.com/tonkeeper/tongo/liteclient"
	"github.com/tonkeeper/tongo/tlb"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

const (
	masterchain      = -1
	masterchainShard = 0x8000000000000000

	// lookup by seqno
	lookupModeSeqno = 1
)

var (
	ErrorNoSource = fmt.Errorf("no entropy source is configured, set use_beacon or entropy_seed")
)

// MasterchainReader is the part of the lite client the beacon reads from.
type MasterchainReader interface {
	GetMasterchainInfo(ctx context.Context) (liteclient.LiteServerMasterchainInfoC, error)
	LookupBlock(ctx context.Context, blockID tongo.BlockID, mode uint32, lt *uint64, utime *uint32) (tongo.BlockIDExt, tlb.BlockInfo, error)
}

// MasterchainBeacon commits a draw to a masterchain block that is delay
// blocks ahead of the last one, and reveals the hash of that block once it
// is produced. Masterchain blocks are final when produced, and nobody knows
// the hash of the target block while the commitment is made.
type MasterchainBeacon struct {
	client MasterchainReader
	delay  uint32
	logger *zap.SugaredLogger
}

func NewMasterchainBeacon(client MasterchainReader, delay uint32, logger *zap.SugaredLogger) *MasterchainBeacon {
	if delay == 0 {
		delay = 1
	}
	return &MasterchainBeacon{
		client: client,
		delay:  delay,
		logger: logger,
	}
}

func (b *MasterchainBeacon) Commit(ctx context.Context) (uint64, error) {
	last, err := b.lastSeqno(ctx)
	if err != nil {
		return 0, err
	}
	target := uint64(last) + uint64(b.delay)
	b.logger.Debugf("draw committed to masterchain block %v [last: %v]", target, last)
	return target, nil
}

func (b *MasterchainBeacon) Reveal(ctx context.Context, target uint64) (domain.Entropy, error) {
	var res domain.Entropy

	last, err := b.lastSeqno(ctx)
	if err != nil {
		return res, err
	}
	if uint64(last) < target {
		return res, fmt.Errorf("%w: masterchain is at %v, waiting for %v", domain.ErrorEntropyPending, last, target)
	}

	blockId := tongo.BlockID{
		Workchain: masterchain,
		Shard:     masterchainShard,
		Seqno:     uint32(target),
	}
	id, info, err := b.client.LookupBlock(ctx, blockId, lookupModeSeqno, nil, nil)
	if err != nil {
		return res, fmt.Errorf("looking up masterchain block %v: %w", target, err)
	}

	block := model.NewHBlock(id, info)
	if uint64(block.Seqno()) != target {
		return res, fmt.Errorf("lite server returned block %v for %v", block.Seqno(), target)
	}
	b.logger.Debugf("beacon block %v [root hash: %v, time: %v]", block.Seqno(), block.Formatter().RootHash(), block.Formatter().LocalTimeString())

	rootHash := block.RootHash()
	fileHash := block.FileHash()

	var buf [68]byte
	copy(buf[:32], rootHash[:])
	copy(buf[32:64], fileHash[:])
	binary.BigEndian.PutUint32(buf[64:], block.Seqno())

	res = sha3.Sum256(buf[:])
	return res, nil
}

func (b *MasterchainBeacon) lastSeqno(ctx context.Context) (uint32, error) {
	info, err := b.client.GetMasterchainInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting masterchain info: %w", err)
	}
	return info.Last.Seqno, nil
}

// Sequence is a deterministic entropy source: the value at target n is
// sha3-256(sha3-256(seed) || n). Commit hands out increasing targets, each
// revealed at once. It is meant for tests and local runs.
type Sequence struct {
	mu      sync.Mutex
	root    [32]byte
	counter uint64
}

func NewSequence(seed string) *Sequence {
	return &Sequence{
		root: sha3.Sum256([]byte(seed)),
	}
}

func (s *Sequence) Commit(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.counter
	s.counter++
	return target, nil
}

func (s *Sequence) Reveal(ctx context.Context, target uint64) (domain.Entropy, error) {
	var buf [40]byte
	copy(buf[:32], s.root[:])
	binary.BigEndian.PutUint64(buf[32:], target)

	return sha3.Sum256(buf[:]), nil
}

// Unavailable is used when no entropy source is configured. Draws over a
// non-empty holder set fail with ErrorNoSource.
type Unavailable struct{}

func (Unavailable) Commit(ctx context.Context) (uint64, error) {
	return 0, ErrorNoSource
}

func (Unavailable) Reveal(ctx context.Context, target uint64) (domain.Entropy, error) {
	return domain.Entropy{}, ErrorNoSource
}
