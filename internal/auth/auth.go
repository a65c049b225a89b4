package auth

import (
	"context"
	"errors"
)

// Role is the actor's permission level, carried in the access token.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleAccountant Role = "accountant"
	RoleCashier    Role = "cashier"
)

// CanRecordPayments reports whether the role may post payments against
// invoices. Cashiers take sale tender at the register but do not touch the
// invoice ledger.
func (r Role) CanRecordPayments() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAccountant:
		return true
	default:
		return false
	}
}

// CanTransferStock reports whether the role may move stock between products.
func (r Role) CanTransferStock() bool {
	return r == RoleAdmin || r == RoleManager
}

var ErrNoActor = errors.New("no authenticated actor in context")

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// RoleProvider resolves the current actor's role. The payment ledger gates
// on it; everything else about sessions lives outside the core.
type RoleProvider interface {
	CurrentActor(ctx context.Context) (Actor, error)
}

type ctxKey struct{}

// WithActor returns a context carrying the actor. The HTTP middleware and the
// TUI login both use this.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

// ContextProvider reads the actor placed in the context by WithActor.
type ContextProvider struct{}

func (ContextProvider) CurrentActor(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(ctxKey{}).(Actor)
	if !ok {
		return Actor{}, ErrNoActor
	}

	return actor, nil
}

// StaticProvider always returns the same actor. Used by cmd/tui, where the
// operator signs in once for the whole session.
type StaticProvider struct {
	Actor Actor
}

func (p StaticProvider) CurrentActor(context.Context) (Actor, error) {
	return p.Actor, nil
}
