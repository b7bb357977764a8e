package domain

import (
	"encoding/hex"
	"fmt"

	"github.com/tonkeeper/tongo/boc"
)

// The state is serialized as a bag of cells. The root cell holds the fixed
// fields and the holder count; holders live in a tree hanging off the root's
// single ref. Leaves carry up to identitiesPerLeaf identities and inner cells
// up to refsPerNode children, both filled left to right, so the tree shape is
// a function of the holder count alone.
const (
	stateCodecVersion = 1
	identitiesPerLeaf = 3
	refsPerNode       = 4

	// workchain (32 bits) and address (256 bits)
	identityBytes = 36
)

var (
	ErrorInvalidStateData    = fmt.Errorf("invalid ledger state data")
	ErrorUnsupportedVersion  = fmt.Errorf("unsupported ledger state version")
	ErrorMalformedHolderTree = fmt.Errorf("malformed holder tree")
)

func EncodeState(s *LedgerState) ([]byte, error) {
	root, err := stateCell(s)
	if err != nil {
		return nil, err
	}
	return root.ToBoc()
}

func DecodeState(data []byte) (*LedgerState, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrorInvalidStateData)
	}

	cells, err := boc.DeserializeBoc(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorInvalidStateData, err)
	}
	if len(cells) != 1 {
		return nil, fmt.Errorf("%w: expected one root cell, got %v", ErrorInvalidStateData, len(cells))
	}

	root := cells[0]
	version, err := root.ReadUint(8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorInvalidStateData, err)
	}
	if version != stateCodecVersion {
		return nil, fmt.Errorf("%w: %v", ErrorUnsupportedVersion, version)
	}

	s := &LedgerState{}

	tax, err := root.ReadUint(8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorInvalidStateData, err)
	}
	s.TaxPercentage = uint8(tax)

	s.TotalTokens, err = root.ReadUint(64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorInvalidStateData, err)
	}

	s.Authority, err = readIdentity(root)
	if err != nil {
		return nil, err
	}

	selected, err := root.ReadBit()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorInvalidStateData, err)
	}
	if selected {
		id, err := readIdentity(root)
		if err != nil {
			return nil, err
		}
		s.SelectedWallet = &id
	}

	count, err := root.ReadUint(32)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorInvalidStateData, err)
	}

	// Every holder occupies its own bits in the data, leaves are never shared
	// since reading one consumes it.
	if count > uint64(len(data)/identityBytes) {
		return nil, fmt.Errorf("%w: %v holders do not fit in %v bytes", ErrorInvalidStateData, count, len(data))
	}

	s.Holders = make([]Identity, 0, count)
	if count > 0 {
		refs := root.Refs()
		if len(refs) != 1 {
			return nil, ErrorMalformedHolderTree
		}
		remaining := int(count)
		err = readHolderTree(refs[0], treeHeight(int(count)), &remaining, &s.Holders)
		if err != nil {
			return nil, err
		}
		if remaining != 0 {
			return nil, ErrorMalformedHolderTree
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrorInvalidStateData, err)
	}
	return s, nil
}

// StateHash returns the hex representation of the root cell hash.
func StateHash(s *LedgerState) (string, error) {
	root, err := stateCell(s)
	if err != nil {
		return "", err
	}
	h, err := root.Hash()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h), nil
}

func stateCell(s *LedgerState) (*boc.Cell, error) {
	cell := boc.NewCell()

	if err := cell.WriteUint(stateCodecVersion, 8); err != nil {
		return nil, err
	}
	if err := cell.WriteUint(uint64(s.TaxPercentage), 8); err != nil {
		return nil, err
	}
	if err := cell.WriteUint(s.TotalTokens, 64); err != nil {
		return nil, err
	}
	if err := writeIdentity(cell, s.Authority); err != nil {
		return nil, err
	}

	if err := cell.WriteBit(s.SelectedWallet != nil); err != nil {
		return nil, err
	}
	if s.SelectedWallet != nil {
		if err := writeIdentity(cell, *s.SelectedWallet); err != nil {
			return nil, err
		}
	}

	if err := cell.WriteUint(uint64(len(s.Holders)), 32); err != nil {
		return nil, err
	}
	if len(s.Holders) > 0 {
		tree, err := holderTree(s.Holders)
		if err != nil {
			return nil, err
		}
		if err := cell.AddRef(tree); err != nil {
			return nil, err
		}
	}

	return cell, nil
}

func writeIdentity(c *boc.Cell, id Identity) error {
	if err := c.WriteUint(uint64(uint32(id.Workchain)), 32); err != nil {
		return err
	}
	return c.WriteBytes(id.Address[:])
}

func readIdentity(c *boc.Cell) (Identity, error) {
	var id Identity

	wc, err := c.ReadUint(32)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrorInvalidStateData, err)
	}
	addr, err := c.ReadBytes(32)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrorInvalidStateData, err)
	}

	id.Workchain = int32(uint32(wc))
	copy(id.Address[:], addr)
	return id, nil
}

func holderTree(holders []Identity) (*boc.Cell, error) {
	nodes := make([]*boc.Cell, 0, len(holders)/identitiesPerLeaf+1)
	for i := 0; i < len(holders); i += identitiesPerLeaf {
		end := i + identitiesPerLeaf
		if end > len(holders) {
			end = len(holders)
		}

		leaf := boc.NewCell()
		for _, h := range holders[i:end] {
			if err := writeIdentity(leaf, h); err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, leaf)
	}

	for len(nodes) > 1 {
		parents := make([]*boc.Cell, 0, len(nodes)/refsPerNode+1)
		for i := 0; i < len(nodes); i += refsPerNode {
			end := i + refsPerNode
			if end > len(nodes) {
				end = len(nodes)
			}

			parent := boc.NewCell()
			for _, child := range nodes[i:end] {
				if err := parent.AddRef(child); err != nil {
					return nil, err
				}
			}
			parents = append(parents, parent)
		}
		nodes = parents
	}

	return nodes[0], nil
}

func treeHeight(count int) int {
	height := 0
	width := (count + identitiesPerLeaf - 1) / identitiesPerLeaf
	for width > 1 {
		width = (width + refsPerNode - 1) / refsPerNode
		height++
	}
	return height
}

func readHolderTree(c *boc.Cell, height int, remaining *int, out *[]Identity) error {
	if height == 0 {
		n := identitiesPerLeaf
		if *remaining < n {
			n = *remaining
		}
		for i := 0; i < n; i++ {
			id, err := readIdentity(c)
			if err != nil {
				return err
			}
			*out = append(*out, id)
		}
		*remaining -= n
		return nil
	}

	refs := c.Refs()
	if len(refs) == 0 || len(refs) > refsPerNode {
		return ErrorMalformedHolderTree
	}
	for _, child := range refs {
		if *remaining == 0 {
			return ErrorMalformedHolderTree
		}
		if err := readHolderTree(child, height-1, remaining, out); err != nil {
			return err
		}
	}
	return nil
}
