package application

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/repotrend/internal/domain/model"
	"github.com/ericfisherdev/repotrend/internal/domain/port/driven"
)

// SlotStatus is an exported view of one Collected slot and how close its
// lookback window is to closing.
type SlotStatus struct {
	CollectionDate time.Time
	Rows           int
	WindowEnd      time.Time
	DaysAvailable  int
	LookbackDays   int
}

// Ready reports whether every window day has candidate history.
func (s SlotStatus) Ready() bool {
	return s.DaysAvailable >= s.LookbackDays
}

// StatusService reports the Collected slots awaiting labeling and the
// candidate history their windows depend on.
type StatusService struct {
	store   driven.UnlabeledStore
	labeler *TrendingLabeler
	history driven.HistoryLister
}

// NewStatusService creates a StatusService.
func NewStatusService(store driven.UnlabeledStore, labeler *TrendingLabeler, history driven.HistoryLister) *StatusService {
	return &StatusService{store: store, labeler: labeler, history: history}
}

// Slots returns the status of every Collected slot, oldest first.
func (s *StatusService) Slots(ctx context.Context) ([]SlotStatus, error) {
	dates, err := s.store.ListDates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collected slots: %w", err)
	}

	statuses := make([]SlotStatus, 0, len(dates))
	for _, d := range dates {
		rows, err := s.store.Load(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("load slot %s: %w", model.FormatDay(d), err)
		}
		available, err := s.labeler.WindowAvailability(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("window availability %s: %w", model.FormatDay(d), err)
		}
		statuses = append(statuses, SlotStatus{
			CollectionDate: d,
			Rows:           len(rows),
			WindowEnd:      s.labeler.WindowEnd(d),
			DaysAvailable:  available,
			LookbackDays:   s.labeler.LookbackDays(),
		})
	}

	return statuses, nil
}

// History returns the recorded candidate days of the last days days up to
// and including today.
func (s *StatusService) History(ctx context.Context, today time.Time, days int) ([]model.HistoryDay, error) {
	from := model.AddDays(today, -(days - 1))
	recorded, err := s.history.ListDays(ctx, from, model.Day(today))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return recorded, nil
}
