package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/odyssey-ledger/internal/accounting/shared"
)

// Service exposes the read side of the chart of accounts and the guarded delete.
type Service struct {
	repo   Repository
	chart  Chart
	logger *slog.Logger
}

func NewService(repo Repository, chart Chart, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, chart: chart, logger: logger}
}

// Chart returns the category chart used to classify ids.
func (s *Service) Chart() Chart {
	return s.chart
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].Category, _ = s.chart.Categorize(list[i].ID)
	}
	return list, nil
}

// Exists reports whether id is in the chart of accounts.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Resolve(ctx, id)
	if errors.Is(err, shared.ErrAccountNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Resolve returns the account with its category.
func (s *Service) Resolve(ctx context.Context, id string) (Account, error) {
	acc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	acc.Category, _ = s.chart.Categorize(acc.ID)
	return acc, nil
}

// Delete removes an account that has never been posted to.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetForUpdate(ctx, id); err != nil {
			return err
		}
		n, err := tx.CountMovements(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s has %d lines", shared.ErrAccountHasMovements, id, n)
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("account deleted", slog.String("account_id", id))
	return nil
}
