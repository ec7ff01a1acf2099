package fam

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's error taxonomy. Use errors.Is against
// these; the wrapping functions below attach diagnostic context (account/
// period ids, node labels) to the message.
var (
	ErrMissingRule      = errors.New("missing rule")
	ErrUnknownAccount   = errors.New("unknown account")
	ErrUnknownPeriod    = errors.New("unknown period")
	ErrPeriodOutOfRange = errors.New("period out of range")
	ErrCycle            = errors.New("cycle")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrNotConfigured    = errors.New("not configured")
	ErrMissingBaseProfit = errors.New("missing base profit account")
)

func errMissingRule(aid AccountId, pid PeriodId) error {
	return fmt.Errorf("%w: no rule and no seed for %s@%s", ErrMissingRule, aid, pid)
}

func errUnknownAccount(aid AccountId) error {
	return fmt.Errorf("%w: %s", ErrUnknownAccount, aid)
}

func errUnknownPeriod(pid PeriodId) error {
	return fmt.Errorf("%w: %s", ErrUnknownPeriod, pid)
}

func errPeriodOutOfRange(pid PeriodId, offset int) error {
	return fmt.Errorf("%w: %s offset %d", ErrPeriodOutOfRange, pid, offset)
}

// CycleError carries the revisit path for diagnostics.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	s := "cycle detected: "
	for i, p := range e.Path {
		if i > 0 {
			s += " -> "
		}
		s += p
	}
	return s
}

func (e *CycleError) Unwrap() error { return ErrCycle }

func errCycle(path []key, reentry key) error {
	strs := make([]string, 0, len(path)+1)
	for _, k := range path {
		strs = append(strs, k.String())
	}
	strs = append(strs, reentry.String())
	return &CycleError{Path: strs}
}

func errDivisionByZero(label string, id NodeId) error {
	return fmt.Errorf("%w: node %d (%s)", ErrDivisionByZero, id, label)
}

func errNotConfigured(reason string) error {
	return fmt.Errorf("%w: %s", ErrNotConfigured, reason)
}
