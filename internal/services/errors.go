package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"autoshop-server/internal/scheduling"
)

// ErrorKind classifies an expected business failure.
type ErrorKind int

const (
	KindRule ErrorKind = iota
	KindForbidden
	KindNotFound
)

// RuleError is an expected failure with a message that is safe to show the
// caller. Anything else returned by a service is a system fault.
type RuleError struct {
	Kind   ErrorKind
	Reason string
}

func (e *RuleError) Error() string {
	return e.Reason
}

func ruleError(format string, args ...interface{}) error {
	return &RuleError{Kind: KindRule, Reason: fmt.Sprintf(format, args...)}
}

func forbidden(reason string) error {
	return &RuleError{Kind: KindForbidden, Reason: reason}
}

func notFound(reason string) error {
	return &RuleError{Kind: KindNotFound, Reason: reason}
}

// AsRuleError unwraps err into a RuleError when it is one.
func AsRuleError(err error) (*RuleError, bool) {
	var re *RuleError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// orNotFound maps a missing row onto a not-found rule error.
func orNotFound(err error, reason string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(reason)
	}
	return err
}

// Settings carries the shop rules shared by the services.
type Settings struct {
	Hours   scheduling.ShopHours
	TaxRate decimal.Decimal
	Now     func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
