package timesheet

import (
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
)

// ResolverStore provides the read-only lookups validator resolution needs.
type ResolverStore interface {
	ProjectIDsForSheet(sheetID int64) ([]int64, error)
	ValidatorsForProjects(projectIDs []int64) ([]*coreuser.User, error)
	UserByID(id int64) (*coreuser.User, error)
	// ActiveApprovers returns every active user with the validator or admin
	// role, for the administrative fallback.
	ActiveApprovers() ([]*coreuser.User, error)
}

// Resolver computes the set of accounts authorized to approve a timesheet.
// It is deterministic and side-effect-free: the same sheet and directory
// state always yield the same set, so the result can be re-derived for
// authorization checks without storing it.
type Resolver struct {
	store ResolverStore
}

func NewResolver(store ResolverStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the deduplicated validator set for a sheet:
// project-level validators of every project its entries reference, plus the
// owner's manager, falling back to every active validator/admin (minus the
// owner) when that set is empty.
func (r *Resolver) Resolve(sheet *TimeSheet) ([]*coreuser.User, error) {
	seen := make(map[int64]bool)
	var resolved []*coreuser.User

	add := func(u *coreuser.User) {
		if u == nil || seen[u.ID] {
			return
		}
		seen[u.ID] = true
		resolved = append(resolved, u)
	}

	projectIDs, err := r.store.ProjectIDsForSheet(sheet.ID)
	if err != nil {
		return nil, err
	}

	if len(projectIDs) > 0 {
		validators, err := r.store.ValidatorsForProjects(projectIDs)
		if err != nil {
			return nil, err
		}
		for _, v := range validators {
			add(v)
		}
	}

	owner, err := r.store.UserByID(sheet.UserID)
	if err != nil {
		return nil, err
	}
	if owner.ManagerID != nil {
		manager, err := r.store.UserByID(*owner.ManagerID)
		if err == nil && manager.IsActive {
			add(manager)
		}
	}

	if len(resolved) == 0 {
		fallback, err := r.store.ActiveApprovers()
		if err != nil {
			return nil, err
		}
		for _, u := range fallback {
			if u.ID == sheet.UserID {
				continue
			}
			add(u)
		}
	}

	return resolved, nil
}

// IsResolvedValidator reports whether userID belongs to the sheet's resolved
// validator set.
func (r *Resolver) IsResolvedValidator(sheet *TimeSheet, userID int64) (bool, error) {
	resolved, err := r.Resolve(sheet)
	if err != nil {
		return false, err
	}
	for _, u := range resolved {
		if u.ID == userID {
			return true, nil
		}
	}
	return false, nil
}
