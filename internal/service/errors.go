package service

import (
	"errors"
	"fmt"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
)

var (
	ErrInvalidRequest        = errors.New("invalid analysis request")
	ErrUnsupportedCapability = errors.New("unsupported capability")
	ErrInsufficientHoldings  = errors.New("portfolio optimization needs at least 2 holdings")
	ErrSuperseded            = errors.New("analysis superseded by a newer request")
)

// CapabilityError qualifies any orchestrator failure with the capability that
// produced it.
type CapabilityError struct {
	Capability domain.Capability
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Capability.Label(), e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }

func capabilityErr(c domain.Capability, err error) error {
	if err == nil {
		return nil
	}
	var ce *CapabilityError
	if errors.As(err, &ce) {
		return err
	}
	return &CapabilityError{Capability: c, Err: err}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
