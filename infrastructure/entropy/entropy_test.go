package entropy

import (
	"context"
	"fmt"
	"testing"

	"taxtoken/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonkeeper/tongo"
	"github.com/tonkeeper/tongo/liteclient"
	"github.com/tonkeeper/tongo/tlb"
	"go.uber.org/zap"
)

type fakeMasterchain struct {
	last    uint32
	blocks  map[uint32]tongo.BlockIDExt
	err     error
	lookups []tongo.BlockID
}

func newFakeMasterchain(last uint32) *fakeMasterchain {
	return &fakeMasterchain{last: last, blocks: make(map[uint32]tongo.BlockIDExt)}
}

func (m *fakeMasterchain) produce(seqno uint32, hash byte) {
	id := tongo.BlockIDExt{BlockID: tongo.BlockID{Workchain: -1, Shard: 0x8000000000000000, Seqno: seqno}}
	id.RootHash[0] = hash
	id.FileHash[31] = hash
	m.blocks[seqno] = id
	m.last = seqno
}

func (m *fakeMasterchain) GetMasterchainInfo(ctx context.Context) (liteclient.LiteServerMasterchainInfoC, error) {
	var info liteclient.LiteServerMasterchainInfoC
	if m.err != nil {
		return info, m.err
	}
	info.Last.Seqno = m.last
	return info, nil
}

func (m *fakeMasterchain) LookupBlock(ctx context.Context, blockID tongo.BlockID, mode uint32, lt *uint64, utime *uint32) (tongo.BlockIDExt, tlb.BlockInfo, error) {
	m.lookups = append(m.lookups, blockID)
	id, ok := m.blocks[blockID.Seqno]
	if !ok {
		return tongo.BlockIDExt{}, tlb.BlockInfo{}, fmt.Errorf("block %v not found", blockID.Seqno)
	}
	return id, tlb.BlockInfo{}, nil
}

func TestSequenceDeterministic(t *testing.T) {
	ctx := context.Background()
	a := NewSequence("seed")
	b := NewSequence("seed")
	c := NewSequence("other")

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		ta, err := a.Commit(ctx)
		require.NoError(t, err)
		tb, err := b.Commit(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), ta)
		assert.Equal(t, ta, tb)

		ea, err := a.Reveal(ctx, ta)
		require.NoError(t, err)
		eb, err := b.Reveal(ctx, tb)
		require.NoError(t, err)
		ec, err := c.Reveal(ctx, ta)
		require.NoError(t, err)

		assert.Equal(t, ea, eb)
		assert.NotEqual(t, ea, ec)
		assert.False(t, seen[ea.Hex()])
		seen[ea.Hex()] = true
	}
}

func TestMasterchainBeacon(t *testing.T) {
	ctx := context.Background()
	chain := newFakeMasterchain(1000)
	beacon := NewMasterchainBeacon(chain, 3, zap.NewNop().Sugar())

	target, err := beacon.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1003), target)

	// The target block is not produced yet, whatever is on chain now.
	chain.produce(1002, 0xaa)
	_, err = beacon.Reveal(ctx, target)
	assert.ErrorIs(t, err, domain.ErrorEntropyPending)
	assert.Empty(t, chain.lookups)

	chain.produce(1003, 0x01)
	chain.produce(1004, 0x02)
	first, err := beacon.Reveal(ctx, target)
	require.NoError(t, err)
	require.Len(t, chain.lookups, 1)
	assert.Equal(t, int32(-1), chain.lookups[0].Workchain)
	assert.Equal(t, uint32(1003), chain.lookups[0].Seqno)

	// Later blocks do not move the revealed value.
	chain.produce(1005, 0x03)
	again, err := beacon.Reveal(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := beacon.Reveal(ctx, 1004)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestMasterchainBeaconErrors(t *testing.T) {
	ctx := context.Background()

	failure := fmt.Errorf("lite server down")
	chain := newFakeMasterchain(10)
	chain.err = failure
	beacon := NewMasterchainBeacon(chain, 2, zap.NewNop().Sugar())

	_, err := beacon.Commit(ctx)
	assert.ErrorIs(t, err, failure)
	_, err = beacon.Reveal(ctx, 5)
	assert.ErrorIs(t, err, failure)

	// Reached but unknown to the lite server.
	chain.err = nil
	_, err = beacon.Reveal(ctx, 7)
	assert.ErrorContains(t, err, "block 7 not found")
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Commit(context.Background())
	assert.ErrorIs(t, err, ErrorNoSource)
	_, err = Unavailable{}.Reveal(context.Background(), 0)
	assert.ErrorIs(t, err, ErrorNoSource)
}
