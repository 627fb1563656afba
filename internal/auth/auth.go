// Package auth resolves what an authenticated caller may do. Roles are mapped to
// capabilities once here; domain services ask for a capability, never a role.
package auth

import (
	"context"
	"fmt"

	"loan-engine/internal/pkg/apperrors"
)

type Role string

const (
	RoleAdmin       Role = "admin"
	RoleManager     Role = "manager"
	RoleLoanOfficer Role = "loan_officer"
	RoleClient      Role = "client"
)

type Capability string

const (
	CapLoanCreate      Capability = "loan:create"
	CapLoanReadAll     Capability = "loan:read_all"
	CapLoanApprove     Capability = "loan:approve"
	CapLoanDisburse    Capability = "loan:disburse"
	CapLoanUpdate      Capability = "loan:update"
	CapLoanDelete      Capability = "loan:delete"
	CapLoanRecalculate Capability = "loan:recalculate"
	CapPaymentCreate   Capability = "payment:create"
	CapPaymentDelete   Capability = "payment:delete"
	CapPaymentReadAll  Capability = "payment:read_all"
	CapProductManage   Capability = "product:manage"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapLoanCreate, CapLoanReadAll, CapLoanApprove, CapLoanDisburse, CapLoanUpdate,
		CapLoanDelete, CapLoanRecalculate, CapPaymentCreate, CapPaymentDelete,
		CapPaymentReadAll, CapProductManage,
	},
	RoleManager: {
		CapLoanCreate, CapLoanReadAll, CapLoanApprove, CapLoanDisburse, CapLoanUpdate,
		CapLoanRecalculate, CapPaymentCreate, CapPaymentReadAll, CapProductManage,
	},
	RoleLoanOfficer: {
		CapLoanCreate, CapLoanReadAll, CapLoanUpdate, CapPaymentCreate, CapPaymentReadAll,
	},
	RoleClient: {
		CapPaymentCreate,
	},
}

type Actor struct {
	ID   int64
	Role Role
}

// ActorType is the label written to audit entries.
func (a Actor) ActorType() string {
	if a.Role == "" {
		return "system"
	}
	return string(a.Role)
}

func ParseRole(raw string) (Role, bool) {
	r := Role(raw)
	_, ok := roleCapabilities[r]
	return r, ok
}

func HasCapability(actor Actor, c Capability) bool {
	for _, granted := range roleCapabilities[actor.Role] {
		if granted == c {
			return true
		}
	}
	return false
}

func Require(actor Actor, c Capability) error {
	if HasCapability(actor, c) {
		return nil
	}
	return fmt.Errorf("%w: role %q lacks %s", apperrors.ErrForbidden, actor.Role, c)
}

type ctxKey struct{}

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, actor)
}

func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(ctxKey{}).(Actor)
	return actor, ok
}
