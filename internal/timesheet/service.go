package timesheet

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	errors "github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/audit"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
	"github.com/frahmantamala/timesheet-management/internal/signature"
)

// Repository is the transactional data access surface for the workflow.
// InTransaction yields a repository bound to one database transaction; every
// workflow operation runs entirely inside one so a failure rolls back the
// status change, the approval fan-out and the notification rows together.
type Repository interface {
	ResolverStore

	InTransaction(fn func(tx Repository) error) error

	GetSheetByID(id int64) (*TimeSheet, error)
	// GetSheetForUpdate locks the sheet row for the remainder of the
	// transaction, serializing concurrent workflow operations per sheet.
	GetSheetForUpdate(id int64) (*TimeSheet, error)
	GetSheetByOwnerAndWeek(ownerID int64, weekStart time.Time) (*TimeSheet, error)
	CreateSheet(sheet *TimeSheet) error
	SaveSheet(sheet *TimeSheet) error
	ListSheetsByOwner(ownerID int64, limit, offset int) ([]*TimeSheet, error)

	GetEntryByID(id int64) (*TimeEntry, error)
	ListEntries(sheetID int64) ([]*TimeEntry, error)
	CreateEntry(entry *TimeEntry) error
	SaveEntry(entry *TimeEntry) error
	DeleteEntry(id int64) error
	// SumEntries recomputes the exact total from current rows; totals are
	// never adjusted incrementally, to avoid drift.
	SumEntries(sheetID int64) (totalMinutes int64, entryCount int64, err error)

	GetApproval(sheetID, validatorID int64) (*Approval, error)
	ListApprovals(sheetID int64) ([]*Approval, error)
	CreateApproval(approval *Approval) error
	SaveApproval(approval *Approval) error
	RejectPendingApprovals(sheetID int64, comment string, at time.Time) (int64, error)
	ListPendingApprovalsForValidator(validatorID int64, limit, offset int) ([]*Approval, error)

	CreateNotification(n *Notification) error
}

// Auditor records signed audit entries; implementations must contain their
// own failures (see the audit package).
type Auditor interface {
	Record(ctx context.Context, entry audit.Entry)
}

// Service owns the timesheet state machine and orchestrates validator
// resolution, audit recording and notification creation.
type Service struct {
	repo    Repository
	auditor Auditor
	bus     *events.EventBus
	logger  *slog.Logger
}

func NewService(repo Repository, auditor Auditor, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		auditor: auditor,
		bus:     bus,
		logger:  logger,
	}
}

// CreateEntry logs work against the actor's (or, for admins, another user's)
// sheet for the entry's week, creating the draft sheet on first use.
func (s *Service) CreateEntry(ctx context.Context, actor *coreuser.User, dto CreateEntryDTO) (*TimeEntry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ownerID := actor.ID
	if dto.UserID != 0 && dto.UserID != actor.ID {
		if !actor.IsAdmin() {
			return nil, errors.ErrEntryAccessDenied
		}
		ownerID = dto.UserID
	}

	var entry *TimeEntry
	err := s.repo.InTransaction(func(tx Repository) error {
		sheet, err := s.openSheetForWeek(tx, ownerID, WeekStartOf(dto.EntryDate))
		if err != nil {
			return err
		}

		now := time.Now()
		entry = &TimeEntry{
			UserID:       ownerID,
			TimesheetID:  sheet.ID,
			ProjectID:    dto.ProjectID,
			SubProjectID: dto.SubProjectID,
			EntryDate:    dto.EntryDate,
			Minutes:      dto.Minutes,
			Billable:     dto.IsBillable(),
			Description:  dto.Description,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.CreateEntry(entry); err != nil {
			return err
		}

		return s.recomputeTotal(tx, sheet)
	})
	if err != nil {
		s.logger.Error("failed to create time entry", "error", err, "actor_id", actor.ID, "owner_id", ownerID)
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionCreate,
		ResourceType: "time_entry",
		ResourceID:   strconv.FormatInt(entry.ID, 10),
		ActorID:      actor.ID,
		NewValues:    entry,
	})

	s.logger.Info("time entry created",
		"entry_id", entry.ID,
		"timesheet_id", entry.TimesheetID,
		"owner_id", ownerID,
		"minutes", entry.Minutes)

	return entry, nil
}

// UpdateEntry edits an unlocked entry. The entry date may move within the
// sheet's week but not into another week.
func (s *Service) UpdateEntry(ctx context.Context, actor *coreuser.User, entryID int64, dto UpdateEntryDTO) (*TimeEntry, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var entry *TimeEntry
	var before *TimeEntry
	err := s.repo.InTransaction(func(tx Repository) error {
		var err error
		entry, err = tx.GetEntryByID(entryID)
		if err != nil {
			return errors.ErrEntryNotFound
		}

		if d := NewPolicyGate(tx).CanMutateEntry(actor, entry.UserID); !d.Allowed() {
			return d.Reason()
		}

		sheet, err := tx.GetSheetForUpdate(entry.TimesheetID)
		if err != nil {
			return errors.ErrTimesheetNotFound
		}
		if sheet.IsLocked() {
			return errors.ErrTimesheetLocked
		}

		snapshot := *entry
		before = &snapshot

		if dto.ProjectID != nil {
			entry.ProjectID = *dto.ProjectID
		}
		if dto.SubProjectID != nil {
			entry.SubProjectID = dto.SubProjectID
		}
		if dto.EntryDate != nil {
			if !WeekStartOf(*dto.EntryDate).Equal(sheet.WeekStart) {
				return errors.NewValidationError("entry date must stay within the timesheet week", errors.ErrCodeInvalidDate)
			}
			entry.EntryDate = *dto.EntryDate
		}
		if dto.Minutes != nil {
			entry.Minutes = *dto.Minutes
		}
		if dto.Billable != nil {
			entry.Billable = *dto.Billable
		}
		if dto.Description != nil {
			entry.Description = *dto.Description
		}
		entry.UpdatedAt = time.Now()

		if err := tx.SaveEntry(entry); err != nil {
			return err
		}

		return s.recomputeTotal(tx, sheet)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionUpdate,
		ResourceType: "time_entry",
		ResourceID:   strconv.FormatInt(entry.ID, 10),
		ActorID:      actor.ID,
		OldValues:    before,
		NewValues:    entry,
	})

	return entry, nil
}

// DeleteEntry removes an unlocked entry and recomputes the sheet total.
func (s *Service) DeleteEntry(ctx context.Context, actor *coreuser.User, entryID int64) error {
	var before *TimeEntry
	err := s.repo.InTransaction(func(tx Repository) error {
		entry, err := tx.GetEntryByID(entryID)
		if err != nil {
			return errors.ErrEntryNotFound
		}

		if d := NewPolicyGate(tx).CanMutateEntry(actor, entry.UserID); !d.Allowed() {
			return d.Reason()
		}

		sheet, err := tx.GetSheetForUpdate(entry.TimesheetID)
		if err != nil {
			return errors.ErrTimesheetNotFound
		}
		if sheet.IsLocked() {
			return errors.ErrTimesheetLocked
		}

		before = entry
		if err := tx.DeleteEntry(entry.ID); err != nil {
			return err
		}

		return s.recomputeTotal(tx, sheet)
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionDelete,
		ResourceType: "time_entry",
		ResourceID:   strconv.FormatInt(entryID, 10),
		ActorID:      actor.ID,
		OldValues:    before,
	})

	return nil
}

// Submit moves an open sheet with at least one entry to submitted, stamps
// the integrity hash, fans out one pending approval per resolved validator
// and notifies each of them. Re-submission after a reopen resets the
// existing approval rows instead of duplicating them.
func (s *Service) Submit(ctx context.Context, actor *coreuser.User, sheetID int64) (*TimeSheet, error) {
	var sheet *TimeSheet
	var validatorIDs []int64
	var notifications []*Notification

	err := s.repo.InTransaction(func(tx Repository) error {
		var err error
		sheet, err = tx.GetSheetForUpdate(sheetID)
		if err != nil {
			return errors.ErrTimesheetNotFound
		}

		if d := NewPolicyGate(tx).CanSubmit(actor, sheet); !d.Allowed() {
			return d.Reason()
		}
		if !sheet.CanBeSubmitted() {
			return errors.ErrInvalidTimesheetStatus
		}

		total, count, err := tx.SumEntries(sheet.ID)
		if err != nil {
			return err
		}
		if count == 0 {
			return errors.ErrEmptySubmission
		}

		now := time.Now()
		hash, err := signature.Digest(signature.NewSubmissionPayload(sheet.UserID, sheet.ID, total, count, now))
		if err != nil {
			return err
		}

		sheet.Status = StatusSubmitted
		sheet.SubmittedAt = &now
		sheet.TotalMinutes = total
		sheet.IntegrityHash = hash
		sheet.UpdatedAt = now
		if err := tx.SaveSheet(sheet); err != nil {
			return err
		}

		validators, err := NewResolver(tx).Resolve(sheet)
		if err != nil {
			return err
		}

		for _, v := range validators {
			validatorIDs = append(validatorIDs, v.ID)

			approval, err := tx.GetApproval(sheet.ID, v.ID)
			if err != nil {
				approval = &Approval{
					TimesheetID: sheet.ID,
					ValidatorID: v.ID,
					Status:      ApprovalStatusPending,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := tx.CreateApproval(approval); err != nil {
					return err
				}
			} else {
				approval.Reset(now)
				if err := tx.SaveApproval(approval); err != nil {
					return err
				}
			}

			n := &Notification{
				ID:          uuid.New().String(),
				RecipientID: v.ID,
				Type:        NotificationSubmitted,
				Title:       "Timesheet awaiting your review",
				Message:     "A timesheet has been submitted for your approval.",
				Payload: map[string]interface{}{
					"timesheet_id": sheet.ID,
					"owner_id":     sheet.UserID,
					"week_start":   sheet.WeekStart.Format("2006-01-02"),
				},
			}
			if err := tx.CreateNotification(n); err != nil {
				return err
			}
			notifications = append(notifications, n)
		}

		return nil
	})
	if err != nil {
		s.logger.Error("timesheet submission failed", "error", err, "timesheet_id", sheetID, "actor_id", actor.ID)
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionSubmit,
		ResourceType: "timesheet",
		ResourceID:   strconv.FormatInt(sheet.ID, 10),
		ActorID:      actor.ID,
		Details:      "submitted for week " + sheet.WeekStart.Format("2006-01-02"),
		NewValues:    sheet,
	})

	s.publishAfterCommit(ctx, events.NewTimesheetSubmittedEvent(sheet.ID, sheet.UserID, validatorIDs), notifications)

	s.logger.Info("timesheet submitted",
		"timesheet_id", sheet.ID,
		"owner_id", sheet.UserID,
		"total_minutes", sheet.TotalMinutes,
		"validators", len(validatorIDs))

	return sheet, nil
}

// Decide applies one validator's decision. The first decision is
// authoritative for the whole sheet: it settles the status, there is no
// quorum, and later decisions fail until the sheet is reopened.
// Administrators without an approval row decide through a synthetic pending
// one created here.
func (s *Service) Decide(ctx context.Context, actor *coreuser.User, sheetID int64, dto DecideDTO) (*TimeSheet, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var sheet *TimeSheet
	var notifications []*Notification

	err := s.repo.InTransaction(func(tx Repository) error {
		var err error
		sheet, err = tx.GetSheetForUpdate(sheetID)
		if err != nil {
			return errors.ErrTimesheetNotFound
		}

		if !sheet.CanBeDecided() {
			return errors.ErrInvalidTimesheetStatus
		}
		if d, err := NewPolicyGate(tx).CanDecide(actor, sheet); err != nil {
			return err
		} else if !d.Allowed() {
			return d.Reason()
		}

		now := time.Now()

		approval, err := tx.GetApproval(sheet.ID, actor.ID)
		if err != nil {
			// only reachable for admins: the gate already rejected
			// everyone else without a row
			approval = &Approval{
				TimesheetID: sheet.ID,
				ValidatorID: actor.ID,
				Status:      ApprovalStatusPending,
				CreatedAt:   now,
			}
			if err := tx.CreateApproval(approval); err != nil {
				return err
			}
		}
		if !approval.IsPending() {
			return errors.ErrApprovalAlreadyDecided
		}

		sig, err := signature.Digest(signature.NewDecisionPayload(sheet.ID, actor.ID, dto.Decision, now))
		if err != nil {
			return err
		}

		approval.Status = dto.Decision
		approval.Comment = dto.Comment
		approval.DecidedAt = &now
		approval.Signature = sig
		approval.UpdatedAt = now
		if err := tx.SaveApproval(approval); err != nil {
			return err
		}

		sheet.Lock(dto.Decision, actor.ID, now)
		if err := tx.SaveSheet(sheet); err != nil {
			return err
		}

		notifType := NotificationApproved
		title := "Timesheet approved"
		if dto.Decision == DecisionRejected {
			notifType = NotificationRejected
			title = "Timesheet rejected"
		}
		n := &Notification{
			ID:          uuid.New().String(),
			RecipientID: sheet.UserID,
			Type:        notifType,
			Title:       title,
			Message:     dto.Comment,
			Payload: map[string]interface{}{
				"timesheet_id": sheet.ID,
				"validator_id": actor.ID,
				"decision":     dto.Decision,
			},
		}
		if err := tx.CreateNotification(n); err != nil {
			return err
		}
		notifications = append(notifications, n)

		return nil
	})
	if err != nil {
		s.logger.Error("timesheet decision failed", "error", err, "timesheet_id", sheetID, "validator_id", actor.ID)
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionDecide,
		ResourceType: "timesheet",
		ResourceID:   strconv.FormatInt(sheet.ID, 10),
		ActorID:      actor.ID,
		Details:      dto.Decision,
		NewValues:    sheet,
	})

	s.publishAfterCommit(ctx, events.NewTimesheetDecidedEvent(sheet.ID, sheet.UserID, actor.ID, dto.Decision), notifications)

	s.logger.Info("timesheet decided",
		"timesheet_id", sheet.ID,
		"validator_id", actor.ID,
		"decision", dto.Decision)

	return sheet, nil
}

// Reopen returns a locked sheet to an editable state. Still-pending
// approvals are bulk-rejected with a system comment so a later re-submission
// starts from a clean slate.
func (s *Service) Reopen(ctx context.Context, actor *coreuser.User, sheetID int64, dto ReopenDTO) (*TimeSheet, error) {
	var sheet *TimeSheet
	var notifications []*Notification

	err := s.repo.InTransaction(func(tx Repository) error {
		var err error
		sheet, err = tx.GetSheetForUpdate(sheetID)
		if err != nil {
			return errors.ErrTimesheetNotFound
		}

		if !sheet.CanBeReopened() {
			return errors.ErrInvalidTimesheetStatus
		}
		if d, err := NewPolicyGate(tx).CanReopen(actor, sheet); err != nil {
			return err
		} else if !d.Allowed() {
			return d.Reason()
		}

		now := time.Now()
		if _, err := tx.RejectPendingApprovals(sheet.ID, ReopenSystemComment, now); err != nil {
			return err
		}

		sheet.Unlock(now)
		if err := tx.SaveSheet(sheet); err != nil {
			return err
		}

		n := &Notification{
			ID:          uuid.New().String(),
			RecipientID: sheet.UserID,
			Type:        NotificationReopened,
			Title:       "Timesheet reopened",
			Message:     dto.Comment,
			Payload: map[string]interface{}{
				"timesheet_id": sheet.ID,
				"actor_id":     actor.ID,
			},
		}
		if err := tx.CreateNotification(n); err != nil {
			return err
		}
		notifications = append(notifications, n)

		return nil
	})
	if err != nil {
		s.logger.Error("timesheet reopen failed", "error", err, "timesheet_id", sheetID, "actor_id", actor.ID)
		return nil, err
	}

	s.auditor.Record(ctx, audit.Entry{
		Action:       audit.ActionReopen,
		ResourceType: "timesheet",
		ResourceID:   strconv.FormatInt(sheet.ID, 10),
		ActorID:      actor.ID,
		Details:      dto.Comment,
		NewValues:    sheet,
	})

	s.publishAfterCommit(ctx, events.NewTimesheetReopenedEvent(sheet.ID, sheet.UserID, actor.ID), notifications)

	s.logger.Info("timesheet reopened", "timesheet_id", sheet.ID, "actor_id", actor.ID)

	return sheet, nil
}

// GetSheet returns the full read model for a sheet the actor may view:
// owner, administrator, owner's manager or a resolved validator.
func (s *Service) GetSheet(ctx context.Context, actor *coreuser.User, sheetID int64) (*SheetDetail, error) {
	sheet, err := s.repo.GetSheetByID(sheetID)
	if err != nil {
		return nil, errors.ErrTimesheetNotFound
	}

	if d, err := NewPolicyGate(s.repo).CanView(actor, sheet); err != nil {
		return nil, err
	} else if !d.Allowed() {
		return nil, d.Reason()
	}

	entries, err := s.repo.ListEntries(sheet.ID)
	if err != nil {
		return nil, err
	}
	approvals, err := s.repo.ListApprovals(sheet.ID)
	if err != nil {
		return nil, err
	}

	return &SheetDetail{
		TimeSheet:  sheet,
		TotalHours: sheet.TotalHours(),
		Entries:    entries,
		Approvals:  approvals,
	}, nil
}

// ListMySheets returns the actor's own sheets, newest week first.
func (s *Service) ListMySheets(actor *coreuser.User, limit, offset int) ([]*TimeSheet, error) {
	return s.repo.ListSheetsByOwner(actor.ID, limit, offset)
}

// ListPendingApprovals is the validator's inbox.
func (s *Service) ListPendingApprovals(actor *coreuser.User, limit, offset int) ([]*Approval, error) {
	return s.repo.ListPendingApprovalsForValidator(actor.ID, limit, offset)
}

// openSheetForWeek fetches the owner's sheet for the week with a row lock,
// creating a draft sheet on first use, and rejects locked sheets.
func (s *Service) openSheetForWeek(tx Repository, ownerID int64, weekStart time.Time) (*TimeSheet, error) {
	sheet, err := tx.GetSheetByOwnerAndWeek(ownerID, weekStart)
	if err == errors.ErrTimesheetNotFound {
		now := time.Now()
		sheet = &TimeSheet{
			UserID:    ownerID,
			WeekStart: weekStart,
			Status:    StatusDraft,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.CreateSheet(sheet); err != nil {
			return nil, err
		}
		return sheet, nil
	}
	if err != nil {
		return nil, err
	}

	sheet, err = tx.GetSheetForUpdate(sheet.ID)
	if err != nil {
		return nil, errors.ErrTimesheetNotFound
	}
	if sheet.IsLocked() {
		return nil, errors.ErrTimesheetLocked
	}
	return sheet, nil
}

// recomputeTotal rewrites the sheet total as the exact sum of its entries.
func (s *Service) recomputeTotal(tx Repository, sheet *TimeSheet) error {
	total, _, err := tx.SumEntries(sheet.ID)
	if err != nil {
		return err
	}
	sheet.TotalMinutes = total
	sheet.UpdatedAt = time.Now()
	return tx.SaveSheet(sheet)
}

// publishAfterCommit emits workflow and notification events once the
// transaction that produced them has committed.
func (s *Service) publishAfterCommit(ctx context.Context, event events.Event, notifications []*Notification) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish workflow event", "error", err, "event_type", event.EventType())
	}
	for _, n := range notifications {
		if err := s.bus.Publish(ctx, events.NewNotificationCreatedEvent(n.ID, n.RecipientID, n.Type)); err != nil {
			s.logger.Warn("failed to publish notification event", "error", err, "notification_id", n.ID)
		}
	}
}
