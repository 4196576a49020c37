package timesheet

import (
	errors "github.com/frahmantamala/timesheet-management/internal"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

// Decision is the tagged outcome of a policy check: allowed, or denied with
// the reason the caller should surface.
type Decision struct {
	reason *errors.AppError
}

func Allow() Decision {
	return Decision{}
}

func Deny(reason *errors.AppError) Decision {
	return Decision{reason: reason}
}

func (d Decision) Allowed() bool {
	return d.reason == nil
}

func (d Decision) Reason() *errors.AppError {
	return d.reason
}

// PolicyStore is the slice of the repository the gate reads from. The
// service passes its transaction-scoped repository so checks see the same
// rows the operation will mutate.
type PolicyStore interface {
	ResolverStore
	GetApproval(sheetID, validatorID int64) (*Approval, error)
}

// PolicyGate holds every ownership/role rule guarding workflow operations,
// so handlers and the service consult a single component instead of ad hoc
// role checks per operation.
type PolicyGate struct {
	store PolicyStore
}

func NewPolicyGate(store PolicyStore) *PolicyGate {
	return &PolicyGate{store: store}
}

// CanMutateEntry: the entry's owner or an administrator.
func (g *PolicyGate) CanMutateEntry(actor *coreuser.User, entryOwnerID int64) Decision {
	if actor.IsAdmin() || actor.ID == entryOwnerID {
		return Allow()
	}
	return Deny(errors.ErrEntryAccessDenied)
}

// CanSubmit: only the sheet's owner, administrators included only when they
// own the sheet.
func (g *PolicyGate) CanSubmit(actor *coreuser.User, sheet *TimeSheet) Decision {
	if actor.ID == sheet.UserID {
		return Allow()
	}
	return Deny(errors.ErrNotOwner)
}

// CanDecide: the actor holds a pending approval for the sheet, or is an
// administrator (admins decide through a synthetic pending approval the
// service creates on demand).
func (g *PolicyGate) CanDecide(actor *coreuser.User, sheet *TimeSheet) (Decision, error) {
	if actor.IsAdmin() {
		return Allow(), nil
	}

	approval, err := g.store.GetApproval(sheet.ID, actor.ID)
	if err != nil {
		return Deny(errors.ErrNotValidator), nil
	}
	if !approval.IsPending() {
		return Deny(errors.ErrApprovalAlreadyDecided), nil
	}
	return Allow(), nil
}

// CanView: the owner, an administrator, the owner's direct manager, or a
// resolved validator for the sheet.
func (g *PolicyGate) CanView(actor *coreuser.User, sheet *TimeSheet) (Decision, error) {
	if actor.IsAdmin() || actor.ID == sheet.UserID {
		return Allow(), nil
	}

	if _, err := g.store.GetApproval(sheet.ID, actor.ID); err == nil {
		return Allow(), nil
	}

	isValidator, err := NewResolver(g.store).IsResolvedValidator(sheet, actor.ID)
	if err != nil {
		return Deny(errors.ErrNotValidator), err
	}
	if isValidator {
		return Allow(), nil
	}

	owner, err := g.store.UserByID(sheet.UserID)
	if err != nil {
		return Deny(errors.ErrNotValidator), err
	}
	if owner.ManagerID != nil && *owner.ManagerID == actor.ID {
		return Allow(), nil
	}

	return Deny(errors.ErrNotValidator), nil
}

// CanReopen: never the owner — the ownership check takes precedence over any
// role the actor also holds. Otherwise an administrator, a resolved
// validator for the sheet, or the owner's direct manager.
func (g *PolicyGate) CanReopen(actor *coreuser.User, sheet *TimeSheet) (Decision, error) {
	if actor.ID == sheet.UserID {
		return Deny(errors.ErrOwnerCannotReopen), nil
	}

	if actor.IsAdmin() {
		return Allow(), nil
	}

	resolver := NewResolver(g.store)
	isValidator, err := resolver.IsResolvedValidator(sheet, actor.ID)
	if err != nil {
		return Deny(errors.ErrNotValidator), err
	}
	if isValidator {
		return Allow(), nil
	}

	owner, err := g.store.UserByID(sheet.UserID)
	if err != nil {
		return Deny(errors.ErrNotValidator), err
	}
	if owner.ManagerID != nil && *owner.ManagerID == actor.ID {
		return Allow(), nil
	}

	return Deny(errors.ErrNotValidator), nil
}
