// Package command exposes the guild bank operations as a typed facade for
// an external command dispatcher.
//
// Each operation resolves the acting player's guild, checks the role
// capability the operation requires, and delegates to the service layer.
// Every failure funnels through a single responder so callers always see
// the same "operation failed: reason" shape; a vetoed operation reports
// success with no effect.
package command
