package model

import (
	"encoding/base64"
	"time"

	"github.com/tonkeeper/tongo"
	"github.com/tonkeeper/tongo/tlb"
)

// HBlock wraps a looked up block id and its header, exposing what the beacon
// entropy source reads from it.
type HBlock struct {
	id   tongo.BlockIDExt
	info tlb.BlockInfo
}

func NewHBlock(id tongo.BlockIDExt, info tlb.BlockInfo) *HBlock {
	return &HBlock{
		id:   id,
		info: info,
	}
}

func (b *HBlock) Seqno() uint32 {
	return b.id.Seqno
}

func (b *HBlock) RootHash() tongo.Bits256 {
	return b.id.RootHash
}

func (b *HBlock) FileHash() tongo.Bits256 {
	return b.id.FileHash
}

func (b *HBlock) UnixTime() time.Time {
	return time.Unix(int64(b.info.GenUtime), 0)
}

func (b *HBlock) Formatter() *HBlockFormatter {
	return NewHBlockFormatter(b)
}

//---------------------------------

type HBlockFormatter struct {
	// Output formatter
	obj *HBlock
}

func NewHBlockFormatter(obj *HBlock) *HBlockFormatter {
	return &HBlockFormatter{
		obj: obj,
	}
}

func (f *HBlockFormatter) RootHash() string {
	buf := f.obj.RootHash()
	return base64.URLEncoding.EncodeToString(buf[:])
}

func (f *HBlockFormatter) LocalTimeString() string {
	return f.obj.UnixTime().Local().Format(time.RFC1123)
}
