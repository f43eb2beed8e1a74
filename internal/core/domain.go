package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryBills         Category = "Bills"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealthcare    Category = "Healthcare"
	CategoryOthers        Category = "Others"
)

const (
	RiskLow    RiskProfile = "low"
	RiskMedium RiskProfile = "medium"
	RiskHigh   RiskProfile = "high"
)

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

const (
	SenderUser    Sender = "user"
	SenderAdvisor Sender = "advisor"
)

const (
	InstrumentStock      InstrumentType = "stock"
	InstrumentBond       InstrumentType = "bond"
	InstrumentMutualFund InstrumentType = "mutual_fund"
	InstrumentETF        InstrumentType = "etf"
	InstrumentCrypto     InstrumentType = "crypto"
)

// MaxDescriptionLength bounds free-text expense descriptions.
const MaxDescriptionLength = 200

type (
	// Category is one of the closed set of expense classifications.
	Category string

	// RiskProfile is a user's tolerance for investment volatility.
	RiskProfile string

	// Period is the window a budget ceiling applies to.
	Period string

	// Sender tags who wrote a chat message.
	Sender string

	InstrumentType string

	User struct {
		ID          string      `json:"id"`
		Name        string      `json:"name"`
		Email       string      `json:"email"`
		Income      Money       `json:"income"` // monthly
		Goals       []string    `json:"goals"`
		RiskProfile RiskProfile `json:"risk_profile"`
		CreatedAt   time.Time   `json:"created_at"`
	}

	Expense struct {
		ID          string   `json:"id"`
		UserID      string   `json:"user_id"`
		Amount      Money    `json:"amount"`
		Category    Category `json:"category"`
		Description string   `json:"description"`
		Date        Date     `json:"date"`
		Recurring   bool     `json:"recurring"`
	}

	// Budget caps spending in one category. Spent is informational only:
	// live spend is always recomputed from expenses.
	Budget struct {
		ID        string   `json:"id"`
		UserID    string   `json:"user_id"`
		Category  Category `json:"category"`
		Ceiling   Money    `json:"ceiling"`
		Spent     Money    `json:"spent"`
		Period    Period   `json:"period"`
		StartDate Date     `json:"start_date"`
	}

	ChatMessage struct {
		ID        string    `json:"id"`
		Sender    Sender    `json:"sender"`
		Text      string    `json:"text"`
		Timestamp time.Time `json:"timestamp"`
	}

	// Investment is read-only catalog data.
	Investment struct {
		ID             string         `json:"id"`
		Name           string         `json:"name"`
		Type           InstrumentType `json:"type"`
		RiskLevel      RiskProfile    `json:"risk_level"`
		ExpectedReturn float64        `json:"expected_return"` // percent per year
		MinInvestment  Money          `json:"min_investment"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidRiskProfile = errors.New("invalid risk profile")
	ErrInvalidPeriod      = errors.New("invalid budget period")
	ErrInvalidSender      = errors.New("invalid message sender")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidDescription = errors.New("description is not valid UTF-8")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrEmptyID            = errors.New("empty id")
	ErrEmptyMessage       = errors.New("empty message")
	ErrEmptyName          = errors.New("empty name")
)

// Categories lists every category in canonical display order.
var Categories = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryBills,
	CategoryShopping,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryOthers,
}

// ParseCategory resolves a category name case-insensitively. The legacy
// "Transportation" label is folded into Travel.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "Transportation") {
		return CategoryTravel, nil
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func (c Category) Validate() error {
	if c.Index() < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(c))
	}
	return nil
}

// Index returns the canonical position of c, or -1 when c is unknown.
func (c Category) Index() int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return -1
}

func ParseRiskProfile(s string) (RiskProfile, error) {
	r := RiskProfile(strings.ToLower(strings.TrimSpace(s)))
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r, nil
}

func (r RiskProfile) Validate() error {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRiskProfile, string(r))
	}
}

func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

func (p Period) Validate() error {
	switch p {
	case Weekly, Monthly:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, string(p))
	}
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return ErrEmptyID
	}
	if u.Income.Paise < 0 {
		return fmt.Errorf("income: %w", ErrNegativeAmount)
	}
	return u.RiskProfile.Validate()
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Category.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if !utf8.ValidString(e.Description) {
		return ErrInvalidDescription
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return e.Date.Validate()
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if err := b.Category.Validate(); err != nil {
		return err
	}
	if b.Ceiling.Paise < 0 {
		return fmt.Errorf("ceiling: %w", ErrNegativeAmount)
	}
	return b.Period.Validate()
}

func (m ChatMessage) Validate() error {
	switch m.Sender {
	case SenderUser, SenderAdvisor:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSender, string(m.Sender))
	}
	if strings.TrimSpace(m.Text) == "" {
		return ErrEmptyMessage
	}
	return nil
}
