package services

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/session"
	"fintrack/internal/state"
)

// Goals decodes either a JSON array of labels or the profile form's
// comma-separated text.
type Goals []string

func (g *Goals) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*g = cleanGoals(list)
		return nil
	}
	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		return err
	}
	*g = SplitGoals(text)
	return nil
}

// SplitGoals splits comma-separated goals, dropping blanks.
func SplitGoals(text string) Goals {
	return cleanGoals(strings.Split(text, ","))
}

func cleanGoals(in []string) Goals {
	out := make(Goals, 0, len(in))
	for _, g := range in {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// ProfileInput is the profile form. Nil fields keep the current value.
type ProfileInput struct {
	Name        *string     `json:"name"`
	Email       *string     `json:"email"`
	Income      *core.Money `json:"income"`
	Goals       *Goals      `json:"goals"`
	RiskProfile *string     `json:"risk_profile"`
}

type ProfileService struct {
	logger *applog.Logger
}

func NewProfileService(logger *applog.Logger) *ProfileService {
	if logger == nil {
		logger = discardLogger(applog.ComponentProfile)
	}
	return &ProfileService{logger: logger}
}

func (s *ProfileService) Get(sess *session.Session) (core.User, error) {
	st, err := authenticated(sess)
	if err != nil {
		return core.User{}, err
	}
	return *st.User, nil
}

// Update applies in on top of the current user and dispatches SetUser. The
// id and creation time never change.
func (s *ProfileService) Update(ctx context.Context, sess *session.Session, in ProfileInput) (core.User, error) {
	st, err := authenticated(sess)
	if err != nil {
		return core.User{}, err
	}

	u := *st.User
	u.Goals = slices.Clone(u.Goals)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return core.User{}, invalid(core.ErrEmptyName)
		}
		u.Name = name
	}
	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.Income != nil {
		u.Income = *in.Income
	}
	if in.Goals != nil {
		u.Goals = []string(*in.Goals)
	}
	if in.RiskProfile != nil {
		risk, err := core.ParseRiskProfile(*in.RiskProfile)
		if err != nil {
			return core.User{}, invalid(err)
		}
		u.RiskProfile = risk
	}
	if err := u.Validate(); err != nil {
		return core.User{}, invalid(err)
	}

	if _, err := dispatch(sess, state.SetUser{User: u}); err != nil {
		return core.User{}, err
	}
	s.logger.InfoContext(ctx, "Profile updated",
		applog.FieldOperation, applog.OpUpdate,
		applog.FieldSessionID, sess.ID,
		applog.FieldUserID, u.ID)
	return u, nil
}
