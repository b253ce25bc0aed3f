package core

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrRequired is returned when a required input field is empty.
var ErrRequired = errors.New("required field missing")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type (
	// ExpenseInput is the body of an expense create or update. Either a split
	// or a category must be given.
	ExpenseInput struct {
		Description string  `json:"description" validate:"required"`
		Amount      float64 `json:"amount" validate:"required"`
		Split       string  `json:"split,omitempty" validate:"required_without=Category"`
		Category    string  `json:"category,omitempty"`
		PaidBy      string  `json:"paidBy,omitempty"`
		Date        Date    `json:"date"`
		Notes       string  `json:"notes,omitempty"`
	}

	IncomeInput struct {
		Amount float64      `json:"amount" validate:"required"`
		Source IncomeSource `json:"source" validate:"required"`
		Date   Date         `json:"date"`
	}

	SplitInput struct {
		Name  string `json:"name" validate:"required"`
		Color string `json:"color,omitempty"`
	}

	// ExpenseFilter narrows an expense listing. Zero fields are unconstrained
	// and both date bounds are inclusive.
	ExpenseFilter struct {
		Split string
		Start Date
		End   Date
	}
)

func (in *ExpenseInput) Normalize() {
	in.Description = strings.TrimSpace(in.Description)
	in.Split = strings.TrimSpace(in.Split)
	in.Category = strings.TrimSpace(in.Category)
	in.PaidBy = strings.TrimSpace(in.PaidBy)
}

func (in ExpenseInput) Validate() error { return check(in) }

func (in IncomeInput) Validate() error { return check(in) }

func (in *SplitInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if strings.TrimSpace(in.Color) == "" {
		in.Color = DefaultSplitColor
	}
}

func (in SplitInput) Validate() error { return check(in) }

// check runs presence validation and reports the missing fields by their
// JSON names.
func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: %s", ErrRequired, strings.Join(fields, ", "))
}

func (f ExpenseFilter) IsZero() bool {
	return f.Split == "" && f.Start.IsZero() && f.End.IsZero()
}

// Values encodes only the constraints that are set.
func (f ExpenseFilter) Values() url.Values {
	q := url.Values{}
	if f.Split != "" {
		q.Set("split", f.Split)
	}
	if !f.Start.IsZero() {
		q.Set("startDate", f.Start.String())
	}
	if !f.End.IsZero() {
		q.Set("endDate", f.End.String())
	}
	return q
}

// Matches applies the filter to e the way the server does.
func (f ExpenseFilter) Matches(e Expense) bool {
	if f.Split != "" && (e.Split == nil || e.Split.ID != f.Split) {
		return false
	}
	day := DateOf(e.Date.Time)
	if !f.Start.IsZero() && day.Before(DateOf(f.Start.Time).Time) {
		return false
	}
	if !f.End.IsZero() && day.After(DateOf(f.End.Time).Time) {
		return false
	}
	return true
}
