// Package memstore is an in-memory host for the ledger: it keeps encoded
// ledger records and the staged transfer legs, plus memos in a separate type. Commits are serialized
// by a single mutex, which stands in for the account-level serialization a
// real host provides.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"taxtoken/domain"
)

type ledgerEntry struct {
	data    []byte
	version int64
}

type Store struct {
	mu      sync.Mutex
	ledgers map[string]ledgerEntry
	legs    []domain.TransferLeg
	nextId  int64
}

func New() *Store {
	return &Store{
		ledgers: make(map[string]ledgerEntry),
		nextId:  1,
	}
}

func (s *Store) Find(ctx context.Context, address string) (*domain.LedgerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exist := s.ledgers[address]
	if !exist {
		return nil, nil
	}

	state, err := domain.DecodeState(entry.data)
	if err != nil {
		return nil, fmt.Errorf("decoding ledger %v: %w", address, err)
	}
	return &domain.LedgerRecord{Address: address, State: state, Version: entry.version}, nil
}

func (s *Store) Create(ctx context.Context, record *domain.LedgerRecord) error {
	data, err := domain.EncodeState(record.State)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exist := s.ledgers[record.Address]; exist {
		return domain.NewLedgerError(domain.KindAlreadyInitialized, "ledger %v already exists", record.Address)
	}

	s.ledgers[record.Address] = ledgerEntry{data: data}
	record.Version = 0
	return nil
}

func (s *Store) Commit(ctx context.Context, record *domain.LedgerRecord, legs []domain.TransferLeg) error {
	data, err := domain.EncodeState(record.State)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exist := s.ledgers[record.Address]
	if !exist {
		return domain.NewLedgerError(domain.KindNotInitialized, "ledger %v does not exist", record.Address)
	}
	if entry.version != record.Version {
		return domain.NewLedgerError(domain.KindStaleState, "ledger %v moved from version %v to %v", record.Address, record.Version, entry.version)
	}

	now := time.Now()
	for _, leg := range legs {
		leg.Id = s.nextId
		leg.Ledger = record.Address
		leg.State = domain.LegStateNew
		leg.Retried = 0
		leg.CreateTime = now
		s.legs = append(s.legs, leg)
		s.nextId++
	}

	s.ledgers[record.Address] = ledgerEntry{data: data, version: entry.version + 1}
	record.Version = entry.version + 1
	return nil
}

// Raw returns the stored encoding of a ledger, for byte-level comparisons.
func (s *Store) Raw(address string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exist := s.ledgers[address]
	if !exist {
		return nil
	}
	return bytes.Clone(entry.data)
}

// Legs returns a copy of every staged leg in staging order.
func (s *Store) Legs() []domain.TransferLeg {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]domain.TransferLeg, len(s.legs))
	copy(res, s.legs)
	return res
}

func (s *Store) FindAllTriable(ctx context.Context, maxRetry int) ([]domain.TransferLeg, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]domain.TransferLeg, 0)
	for _, leg := range s.legs {
		if (leg.State == domain.LegStateNew || leg.State == domain.LegStateRetriable) && leg.Retried < maxRetry {
			res = append(res, leg)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Id < res[j].Id })
	return res, nil
}

func (s *Store) SetState(ctx context.Context, id int64, state string) error {
	return s.updateLeg(id, func(leg *domain.TransferLeg) {
		leg.State = state
	})
}

func (s *Store) SetRetrying(ctx context.Context, id int64, timestamp time.Time) error {
	return s.updateLeg(id, func(leg *domain.TransferLeg) {
		leg.Retried++
		leg.RetryTime = &timestamp
		leg.State = domain.LegStateOngoing
	})
}

func (s *Store) SetSent(ctx context.Context, id int64, timestamp time.Time) error {
	return s.updateLeg(id, func(leg *domain.TransferLeg) {
		leg.SentTime = &timestamp
		leg.State = domain.LegStateSent
	})
}

func (s *Store) updateLeg(id int64, update func(leg *domain.TransferLeg)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.legs {
		if s.legs[i].Id == id {
			update(&s.legs[i])
			return nil
		}
	}
	return fmt.Errorf("leg %v not found", id)
}

// Memos is the in-memory memo repository.
type Memos struct {
	mu    sync.Mutex
	memos map[string]string
}

func NewMemos() *Memos {
	return &Memos{memos: make(map[string]string)}
}

func (m *Memos) Upsert(ctx context.Context, key string, memo domain.Memorable) (*domain.Memo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.memos[key] = memo.ToJson()
	return &domain.Memo{Key: key, Memo: m.memos[key]}, nil
}

// Find returns nil and no error when there is no memo for key.
func (m *Memos) Find(ctx context.Context, key string) (*domain.Memo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	jstr, exist := m.memos[key]
	if !exist {
		return nil, nil
	}
	return &domain.Memo{Key: key, Memo: jstr}, nil
}
