package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/state"
)

const (
	viewDashboard = "dashboard"
	viewReport    = "report"
)

// ReportService computes dashboard and report aggregates. Results are
// cached per session version, so any dispatch invalidates them implicitly.
type ReportService struct {
	cache  cache.Cache[any]
	group  singleflight.Group
	logger *applog.Logger
}

// NewReportService creates the service. c may be nil to disable caching.
func NewReportService(c cache.Cache[any], logger *applog.Logger) *ReportService {
	if logger == nil {
		logger = discardLogger(applog.ComponentReport)
	}
	return &ReportService{cache: c, logger: logger}
}

func (s *ReportService) Dashboard(ctx context.Context, sess *session.Session) (analytics.Dashboard, error) {
	v, err := s.view(ctx, sess, viewDashboard, func(st state.State) any {
		return analytics.BuildDashboard(st.User, st.Expenses, st.Budgets)
	})
	if err != nil {
		return analytics.Dashboard{}, err
	}
	return v.(analytics.Dashboard), nil
}

func (s *ReportService) Report(ctx context.Context, sess *session.Session) (analytics.Report, error) {
	v, err := s.view(ctx, sess, viewReport, func(st state.State) any {
		return analytics.BuildReport(st.User, st.Expenses)
	})
	if err != nil {
		return analytics.Report{}, err
	}
	return v.(analytics.Report), nil
}

// Investments returns the read-only catalog.
func (s *ReportService) Investments(sess *session.Session) ([]core.Investment, error) {
	st, err := authenticated(sess)
	if err != nil {
		return nil, err
	}
	return st.Investments, nil
}

// Invalidate drops every cached view of a session, e.g. on logout.
func (s *ReportService) Invalidate(sessionID string) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.DeletePrefix(sessionID + ":")
}

func (s *ReportService) view(ctx context.Context, sess *session.Session, kind string, build func(state.State) any) (any, error) {
	if sess == nil || sess.Store == nil {
		return nil, ErrNotAuthenticated
	}
	st, version := sess.Store.Snapshot()
	if !st.Authenticated || st.User == nil {
		return nil, ErrNotAuthenticated
	}

	key := fmt.Sprintf("%s:%d:%s", sess.ID, version, kind)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
	}

	v, _, shared := s.group.Do(key, func() (any, error) {
		v := build(st)
		if s.cache != nil {
			s.cache.Set(key, v)
		}
		return v, nil
	})
	s.logger.DebugContext(ctx, "Report view computed",
		applog.FieldSessionID, sess.ID,
		applog.FieldVersion, version,
		"view", kind,
		"shared", shared)
	return v, nil
}
