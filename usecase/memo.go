package usecase

import (
	"context"

	"taxtoken/domain"
)

const (
	DrawMemoKeyPrefix = "draw/"
)

type MemoRepository interface {
	Find(ctx context.Context, key string) (*domain.Memo, error)
	Upsert(ctx context.Context, key string, memo domain.Memorable) (*domain.Memo, error)
}

type MemoInteractor struct {
	memoRepository MemoRepository
}

func NewMemoInteractor(memoRepository MemoRepository) *MemoInteractor {
	interactor := &MemoInteractor{
		memoRepository: memoRepository,
	}
	return interactor
}

func (interactor *MemoInteractor) GetDrawMemo(ctx context.Context, ledger string) (*domain.DrawMemo, error) {
	var drawMemo domain.DrawMemo

	memo, err := interactor.memoRepository.Find(ctx, DrawMemoKeyPrefix+ledger)
	if err != nil {
		return nil, err
	}
	if memo == nil {
		return &drawMemo, nil
	}

	if err := drawMemo.FromJson(memo.Memo); err != nil {
		return nil, err
	}
	return &drawMemo, nil
}

func (interactor *MemoInteractor) SetDrawMemo(ctx context.Context, ledger string, drawMemo *domain.DrawMemo) error {
	_, err := interactor.memoRepository.Upsert(ctx, DrawMemoKeyPrefix+ledger, drawMemo)
	return err
}
