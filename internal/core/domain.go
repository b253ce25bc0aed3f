package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	Salary     IncomeSource = "Salary"
	Freelance  IncomeSource = "Freelance"
	Business   IncomeSource = "Business"
	Investment IncomeSource = "Investment"
	Bonus      IncomeSource = "Bonus"
	Other      IncomeSource = "Other"
)

// DefaultSplitColor is used for new splits when no color is chosen.
const DefaultSplitColor = "#3498db"

// FallbackColor is shown for expenses whose split is unknown.
const FallbackColor = "#667eea"

type (
	IncomeSource string

	// Amount is a money value as the server sends it. Decoding never fails:
	// null, absent, non-numeric or non-finite values become 0.
	Amount float64

	Date struct {
		time.Time
	}

	User struct {
		ID    string `json:"_id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	Split struct {
		ID    string `json:"_id"`
		Name  string `json:"name"`
		Color string `json:"color"`
	}

	// SplitRef is the split an expense points to. The server sends either the
	// bare id or the populated split document.
	SplitRef struct {
		ID    string
		Name  string
		Color string
	}

	Expense struct {
		ID          string    `json:"_id"`
		Description string    `json:"description"`
		Amount      Amount    `json:"amount"`
		Split       *SplitRef `json:"split"`
		Category    string    `json:"category,omitempty"`
		PaidBy      string    `json:"paidBy"`
		Date        Date      `json:"date"`
		Notes       string    `json:"notes,omitempty"`
	}

	Income struct {
		ID     string       `json:"_id"`
		Amount Amount       `json:"amount"`
		Source IncomeSource `json:"source"`
		Date   Date         `json:"date"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

// IncomeSources lists the sources offered when recording income.
var IncomeSources = []IncomeSource{Salary, Freelance, Business, Investment, Bonus, Other}

func (a Amount) Float() float64 { return float64(a) }

func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = 0
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	var f float64
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		f = v
	} else if err := json.Unmarshal(b, &f); err != nil {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*a = Amount(f)
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Date{Time: t}, nil
	}
	return Date{}, ErrInvalidDate
}

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// SameMonth reports whether d falls in the given calendar month.
func (d Date) SameMonth(year int, month time.Month) bool {
	return !d.IsZero() && d.Year() == year && d.Month() == month
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON leaves the date zero when the value cannot be parsed.
func (d *Date) UnmarshalJSON(b []byte) error {
	*d = Date{}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return nil
	}
	*d = parsed
	return nil
}

func (r *SplitRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	var s Split
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = SplitRef(s)
	return nil
}

func (r SplitRef) MarshalJSON() ([]byte, error) {
	if r.Name == "" && r.Color == "" {
		return json.Marshal(r.ID)
	}
	return json.Marshal(Split(r))
}

// Label returns the split name shown in lists.
func (e Expense) Label() string {
	if e.Split == nil || e.Split.Name == "" {
		return "N/A"
	}
	return e.Split.Name
}

// Payer returns who paid, falling back to def.
func (e Expense) Payer(def string) string {
	if strings.TrimSpace(e.PaidBy) == "" {
		return def
	}
	return e.PaidBy
}

// The server identifies documents with "_id"; "id" is accepted as well.

func (u *User) UnmarshalJSON(b []byte) error {
	type alias User
	var aux struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*u = User(aux.alias)
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

func (s *Split) UnmarshalJSON(b []byte) error {
	type alias Split
	var aux struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = Split(aux.alias)
	if s.ID == "" {
		s.ID = aux.AltID
	}
	return nil
}

func (e *Expense) UnmarshalJSON(b []byte) error {
	type alias Expense
	var aux struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*e = Expense(aux.alias)
	if e.ID == "" {
		e.ID = aux.AltID
	}
	return nil
}

func (i *Income) UnmarshalJSON(b []byte) error {
	type alias Income
	var aux struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*i = Income(aux.alias)
	if i.ID == "" {
		i.ID = aux.AltID
	}
	return nil
}
