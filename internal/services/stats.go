package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/pintlog-backend/internal/bac"
	types "github.com/yungbote/pintlog-backend/internal/domain"
	"github.com/yungbote/pintlog-backend/internal/platform/apierr"
	"github.com/yungbote/pintlog-backend/internal/platform/logger"
)

// Window selects a time range either by preset name or by explicit bounds.
// Explicit bounds win when both are set.
type Window struct {
	Range string
	Start *time.Time
	End   *time.Time
}

type UserRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type BACRequest struct {
	UserID          *uuid.UUID
	Window          Window
	IntervalMinutes int
}

type BACSeriesResult struct {
	User            UserRef            `json:"user"`
	WindowStart     time.Time          `json:"window_start"`
	WindowEnd       time.Time          `json:"window_end"`
	IntervalMinutes int                `json:"interval_minutes"`
	Physiology      bac.Physiology     `json:"physiology"`
	Status          bac.SobrietyStatus `json:"status"`
	bac.Result
}

type CompareRequest struct {
	UserIDs         []uuid.UUID
	Window          Window
	IntervalMinutes int
	JoinBy          bac.JoinMode
	Location        *time.Location
}

type ComparisonResult struct {
	Users       []UserRef           `json:"users"`
	JoinBy      bac.JoinMode        `json:"join_by"`
	WindowStart time.Time           `json:"window_start"`
	WindowEnd   time.Time           `json:"window_end"`
	Rows        []bac.ComparisonRow `json:"rows"`
	Current     map[string]float64  `json:"current_bac"`
}

type ConsumptionRequest struct {
	UserID   *uuid.UUID
	Window   Window
	Location *time.Location
}

type DailyResult struct {
	Users       []UserRef      `json:"users"`
	WindowStart time.Time      `json:"window_start"`
	WindowEnd   time.Time      `json:"window_end"`
	Days        []bac.DailyRow `json:"days"`
}

type CumulativeResult struct {
	Users []UserRef           `json:"users"`
	Rows  []bac.CumulativeRow `json:"rows"`
	Total map[string]float64  `json:"total_liters"`
}

type LeaderboardResult struct {
	GroupTotalLiters float64              `json:"group_total_liters"`
	Rows             []bac.LeaderboardRow `json:"rows"`
}

type StatsService interface {
	BACSeries(ctx context.Context, req BACRequest) (*BACSeriesResult, error)
	BACComparison(ctx context.Context, req CompareRequest) (*ComparisonResult, error)
	DailyConsumption(ctx context.Context, req ConsumptionRequest) (*DailyResult, error)
	CumulativeConsumption(ctx context.Context, userID *uuid.UUID) (*CumulativeResult, error)
	Leaderboard(ctx context.Context, window Window) (*LeaderboardResult, error)
}

type statsService struct {
	log             *logger.Logger
	store           EntryStore
	cache           EntryCache
	presets         *bac.Presets
	intervalMinutes int
	now             func() time.Time
}

func NewStatsService(log *logger.Logger, store EntryStore, cache EntryCache, presets *bac.Presets, intervalMinutes int) StatsService {
	if intervalMinutes <= 0 {
		intervalMinutes = presets.IntervalMinutes()
	}
	return &statsService{
		log:             log.With("service", "StatsService"),
		store:           store,
		cache:           cache,
		presets:         presets,
		intervalMinutes: intervalMinutes,
		now:             time.Now,
	}
}

// engineErr surfaces engine validation failures as 400s.
func engineErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, bac.ErrValidation) {
		return apierr.Validation(err)
	}
	return err
}

func resolveWindow(set bac.RangeSet, w Window, now time.Time) (time.Time, time.Time, error) {
	if w.Start != nil || w.End != nil {
		if w.Start == nil || w.End == nil {
			return time.Time{}, time.Time{}, apierr.Validation(fmt.Errorf("start and end must be given together"))
		}
		if w.Start.After(*w.End) {
			return time.Time{}, time.Time{}, apierr.Validation(fmt.Errorf("start is after end"))
		}
		return w.Start.UTC(), w.End.UTC(), nil
	}
	preset, err := set.Resolve(w.Range)
	if err != nil {
		return time.Time{}, time.Time{}, apierr.Validation(err)
	}
	start, end := preset.Window(now.UTC())
	return start, end, nil
}

// snapshot loads the cached entries and the roster concurrently.
func (ss *statsService) snapshot(ctx context.Context) ([]*types.DrinkEvent, []*types.User, error) {
	var (
		entries []*types.DrinkEvent
		users   []*types.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entries, err = ss.cache.Entries(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		users, err = ss.store.ListUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, unavailable(err)
	}
	return entries, users, nil
}

func (ss *statsService) interval(requested int) int {
	if requested != 0 {
		return requested
	}
	return ss.intervalMinutes
}

func eventsOf(entries []*types.DrinkEvent, userID uuid.UUID) []bac.DrinkEvent {
	out := make([]bac.DrinkEvent, 0)
	for _, e := range entries {
		if e.UserID == userID {
			out = append(out, e.ToBAC())
		}
	}
	return out
}

func findUser(users []*types.User, id uuid.UUID) *types.User {
	for _, u := range users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func roster(users []*types.User) []bac.User {
	out := make([]bac.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToBAC())
	}
	return out
}

func refs(users []*types.User) []UserRef {
	out := make([]UserRef, 0, len(users))
	for _, u := range users {
		out = append(out, UserRef{ID: u.ID, Name: u.Name})
	}
	return out
}

func (ss *statsService) BACSeries(ctx context.Context, req BACRequest) (*BACSeriesResult, error) {
	s, err := requireSession(ctx)
	if err != nil {
		return nil, err
	}
	userID := s.UserID
	if req.UserID != nil {
		userID = *req.UserID
	}
	now := ss.now().UTC()
	start, end, err := resolveWindow(ss.presets.BACRanges, req.Window, now)
	if err != nil {
		return nil, err
	}
	entries, users, err := ss.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	u := findUser(users, userID)
	if u == nil {
		return nil, apierr.NotFound(fmt.Errorf("user %s not found", userID))
	}

	physiology := physiologyFor(ss.presets, u)
	interval := ss.interval(req.IntervalMinutes)
	res, err := bac.Estimate(eventsOf(entries, userID), bac.Query{
		WindowStart:     start,
		WindowEnd:       end,
		IntervalMinutes: interval,
		Physiology:      physiology,
		Now:             now,
	})
	if err != nil {
		return nil, engineErr(err)
	}
	return &BACSeriesResult{
		User:            UserRef{ID: u.ID, Name: u.Name},
		WindowStart:     start,
		WindowEnd:       end,
		IntervalMinutes: interval,
		Physiology:      physiology,
		Status:          ss.presets.Status(res.CurrentBAC),
		Result:          res,
	}, nil
}

func (ss *statsService) BACComparison(ctx context.Context, req CompareRequest) (*ComparisonResult, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	now := ss.now().UTC()
	start, end, err := resolveWindow(ss.presets.BACRanges, req.Window, now)
	if err != nil {
		return nil, err
	}
	entries, users, err := ss.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	selected := users
	if len(req.UserIDs) > 0 {
		selected = make([]*types.User, 0, len(req.UserIDs))
		for _, id := range req.UserIDs {
			u := findUser(users, id)
			if u == nil {
				return nil, apierr.NotFound(fmt.Errorf("user %s not found", id))
			}
			selected = append(selected, u)
		}
	}

	interval := ss.interval(req.IntervalMinutes)
	series := make([]bac.UserSeries, len(selected))
	current := make([]float64, len(selected))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, u := range selected {
		i, u := i, u
		g.Go(func() error {
			res, err := bac.Estimate(eventsOf(entries, u.ID), bac.Query{
				WindowStart:     start,
				WindowEnd:       end,
				IntervalMinutes: interval,
				Physiology:      physiologyFor(ss.presets, u),
				Now:             now,
			})
			if err != nil {
				return err
			}
			series[i] = bac.UserSeries{UserID: u.ID.String(), UserName: u.Name, Series: res.Series}
			current[i] = res.CurrentBAC
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, engineErr(err)
	}

	rows, err := bac.Compare(series, bac.CompareOptions{JoinBy: req.JoinBy, Location: req.Location})
	if err != nil {
		return nil, engineErr(err)
	}
	join := req.JoinBy
	if join == "" {
		join = bac.JoinByTimestamp
	}
	cur := make(map[string]float64, len(selected))
	for i, u := range selected {
		cur[u.ID.String()] = current[i]
	}
	return &ComparisonResult{
		Users:       refs(selected),
		JoinBy:      join,
		WindowStart: start,
		WindowEnd:   end,
		Rows:        rows,
		Current:     cur,
	}, nil
}

func (ss *statsService) DailyConsumption(ctx context.Context, req ConsumptionRequest) (*DailyResult, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	start, end, err := resolveWindow(ss.presets.ConsumptionRanges, req.Window, ss.now())
	if err != nil {
		return nil, err
	}
	entries, users, err := ss.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	q := bac.ConsumptionQuery{WindowStart: start, WindowEnd: end, Location: req.Location}
	shown := users
	if req.UserID != nil {
		u := findUser(users, *req.UserID)
		if u == nil {
			return nil, apierr.NotFound(fmt.Errorf("user %s not found", *req.UserID))
		}
		q.UserID = u.ID.String()
		shown = []*types.User{u}
	}
	days, err := bac.DailyConsumption(types.ToBACEvents(entries), roster(users), q)
	if err != nil {
		return nil, engineErr(err)
	}
	return &DailyResult{Users: refs(shown), WindowStart: start, WindowEnd: end, Days: days}, nil
}

func (ss *statsService) CumulativeConsumption(ctx context.Context, userID *uuid.UUID) (*CumulativeResult, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	entries, users, err := ss.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	filter := ""
	shown := users
	if userID != nil {
		u := findUser(users, *userID)
		if u == nil {
			return nil, apierr.NotFound(fmt.Errorf("user %s not found", *userID))
		}
		filter = u.ID.String()
		shown = []*types.User{u}
	}
	events := types.ToBACEvents(entries)
	rows, err := bac.CumulativeConsumption(events, roster(users), filter)
	if err != nil {
		return nil, engineErr(err)
	}
	totals := make(map[string]float64, len(shown))
	for _, u := range shown {
		totals[u.ID.String()] = bac.TotalConsumption(events, u.ID.String())
	}
	return &CumulativeResult{Users: refs(shown), Rows: rows, Total: totals}, nil
}

// Leaderboard ranks the whole roster. An empty window means all time.
func (ss *statsService) Leaderboard(ctx context.Context, window Window) (*LeaderboardResult, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	entries, users, err := ss.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	events := types.ToBACEvents(entries)
	if window.Range != "" || window.Start != nil || window.End != nil {
		start, end, err := resolveWindow(ss.presets.ConsumptionRanges, window, ss.now())
		if err != nil {
			return nil, err
		}
		inWindow := events[:0:0]
		for _, e := range events {
			if !e.OccurredAt.Before(start) && !e.OccurredAt.After(end) {
				inWindow = append(inWindow, e)
			}
		}
		events = inWindow
	}
	return &LeaderboardResult{
		GroupTotalLiters: bac.TotalConsumption(events, ""),
		Rows:             bac.RankEvents(roster(users), events),
	}, nil
}
