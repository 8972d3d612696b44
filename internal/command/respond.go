package command

import (
	"errors"
	"fmt"

	"github.com/forgo/bastion/internal/service"
)

// Result is the uniform outcome of a bank command. Lines carries
// multi-line output such as the ledger transcript.
type Result struct {
	OK      bool     `json:"ok"`
	Message string   `json:"message"`
	Lines   []string `json:"lines,omitempty"`
}

func success(message string) Result {
	return Result{OK: true, Message: message}
}

// failure converts a service error to a Result. This centralizes error
// handling for all commands, ensuring consistent messages regardless of
// which operation failed.
func failure(err error) Result {
	return Result{Message: fmt.Sprintf("operation failed: %s", reason(err))}
}

func reason(err error) string {
	switch {
	// ===== Validation =====
	case errors.Is(err, service.ErrAmountNotANumber),
		errors.Is(err, service.ErrInvalidAmount):
		return err.Error()

	// ===== Business rules =====
	case errors.Is(err, service.ErrInsufficientFunds),
		errors.Is(err, service.ErrInsufficientGuildFunds),
		errors.Is(err, service.ErrOverTierCapacity):
		return err.Error()

	// ===== Authorization =====
	case errors.Is(err, service.ErrNoPermission):
		return err.Error()

	// ===== Lookup =====
	case errors.Is(err, service.ErrNotGuildMember),
		errors.Is(err, service.ErrGuildNotFound):
		return err.Error()

	// ===== Storage =====
	case errors.Is(err, service.ErrStorage):
		return "a storage error occurred, please try again later"

	default:
		return "an unexpected error occurred"
	}
}
