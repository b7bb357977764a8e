package domain

import "encoding/binary"

func testIdentity(n uint32) Identity {
	var id Identity
	binary.BigEndian.PutUint32(id.Address[:4], n)
	id.Address[31] = 0xaa
	return id
}

func testState(t interface{ Fatalf(string, ...interface{}) }, taxPercentage int) *LedgerState {
	s, err := Initialize(nil, testIdentity(0), taxPercentage)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return s
}

func transferFrom(user Identity, amount uint64) TransferRequest {
	return TransferRequest{
		Signer:     user,
		Amount:     amount,
		TaxWallet:  testIdentity(1_000_001),
		DevWallet:  testIdentity(1_000_002),
		UserWallet: user,
	}
}
