package postgres_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	timesheetPostgres "github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
)

func TestTimesheetPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Timesheet Postgres Suite")
}

// SQLite-compatible models for testing

type SQLiteTimeSheet struct {
	ID            int64      `gorm:"primaryKey"`
	UserID        int64      `gorm:"column:user_id;not null;uniqueIndex:idx_owner_week"`
	WeekStart     time.Time  `gorm:"column:week_start;not null;uniqueIndex:idx_owner_week"`
	Status        string     `gorm:"column:status;not null;default:draft"`
	TotalMinutes  int64      `gorm:"column:total_minutes;not null;default:0"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at"`
	LockedAt      *time.Time `gorm:"column:locked_at"`
	LockedBy      *int64     `gorm:"column:locked_by"`
	IntegrityHash string     `gorm:"column:integrity_hash"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (SQLiteTimeSheet) TableName() string { return "timesheets" }

type SQLiteTimeEntry struct {
	ID           int64     `gorm:"primaryKey"`
	UserID       int64     `gorm:"column:user_id;not null;index"`
	TimesheetID  int64     `gorm:"column:timesheet_id;not null;index"`
	ProjectID    int64     `gorm:"column:project_id;not null"`
	SubProjectID *int64    `gorm:"column:sub_project_id"`
	EntryDate    time.Time `gorm:"column:entry_date;not null"`
	Minutes      int64     `gorm:"column:minutes;not null"`
	Billable     bool      `gorm:"column:billable;default:true"`
	Description  string    `gorm:"column:description"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (SQLiteTimeEntry) TableName() string { return "time_entries" }

type SQLiteApproval struct {
	ID          int64      `gorm:"primaryKey"`
	TimesheetID int64      `gorm:"column:timesheet_id;not null;uniqueIndex:idx_sheet_validator"`
	ValidatorID int64      `gorm:"column:validator_id;not null;uniqueIndex:idx_sheet_validator"`
	Status      string     `gorm:"column:status;not null;default:pending"`
	Comment     string     `gorm:"column:comment"`
	DecidedAt   *time.Time `gorm:"column:decided_at"`
	Signature   string     `gorm:"column:signature"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (SQLiteApproval) TableName() string { return "approvals" }

type SQLiteUser struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name"`
	PasswordHash string    `gorm:"column:password_hash"`
	Role         string    `gorm:"column:role;not null;default:user"`
	AuthProvider string    `gorm:"column:auth_provider;not null;default:password"`
	ManagerID    *int64    `gorm:"column:manager_id"`
	TOTPSecret   string    `gorm:"column:totp_secret"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string { return "users" }

type SQLiteProjectValidator struct {
	ID        int64     `gorm:"primaryKey"`
	ProjectID int64     `gorm:"column:project_id;not null;uniqueIndex:idx_project_validator"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_project_validator"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (SQLiteProjectValidator) TableName() string { return "project_validators" }

type SQLiteNotification struct {
	ID          string    `gorm:"primaryKey"`
	RecipientID int64     `gorm:"column:recipient_id;not null;index"`
	Type        string    `gorm:"column:type;not null"`
	Title       string    `gorm:"column:title;not null"`
	Message     string    `gorm:"column:message"`
	Payload     string    `gorm:"column:payload"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (SQLiteNotification) TableName() string { return "notifications" }

var _ = Describe("Timesheet PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo timesheet.Repository
	)

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	newSheet := func(ownerID int64, weekStart time.Time, status string) *timesheet.TimeSheet {
		sheet := &timesheet.TimeSheet{
			UserID:    ownerID,
			WeekStart: weekStart,
			Status:    status,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		Expect(repo.CreateSheet(sheet)).To(Succeed())
		return sheet
	}

	newEntry := func(sheetID, ownerID, projectID, minutes int64) *timesheet.TimeEntry {
		entry := &timesheet.TimeEntry{
			UserID:      ownerID,
			TimesheetID: sheetID,
			ProjectID:   projectID,
			EntryDate:   monday,
			Minutes:     minutes,
			Billable:    true,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		Expect(repo.CreateEntry(entry)).To(Succeed())
		return entry
	}

	newUser := func(id int64, email, role string, active bool) {
		Expect(db.Create(&SQLiteUser{
			ID:       id,
			Email:    email,
			Role:     role,
			IsActive: active,
		}).Error).To(Succeed())
		// GORM substitutes the default:true for a zero-valued IsActive on
		// insert, so an explicit update is needed to persist false.
		Expect(db.Model(&SQLiteUser{}).Where("id = ?", id).
			Update("is_active", active).Error).To(Succeed())
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(
			&SQLiteTimeSheet{},
			&SQLiteTimeEntry{},
			&SQLiteApproval{},
			&SQLiteUser{},
			&SQLiteProjectValidator{},
			&SQLiteNotification{},
		)
		Expect(err).NotTo(HaveOccurred())

		repo = timesheetPostgres.NewTimesheetRepository(db)
	})

	Describe("sheets", func() {
		It("creates and fetches a sheet by id and by owner and week", func() {
			sheet := newSheet(1, monday, timesheet.StatusDraft)
			Expect(sheet.ID).To(BeNumerically(">", 0))

			byID, err := repo.GetSheetByID(sheet.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Status).To(Equal(timesheet.StatusDraft))

			byWeek, err := repo.GetSheetByOwnerAndWeek(1, monday)
			Expect(err).NotTo(HaveOccurred())
			Expect(byWeek.ID).To(Equal(sheet.ID))
		})

		It("returns the not-found sentinel for missing sheets", func() {
			_, err := repo.GetSheetByID(9999)
			Expect(err).To(Equal(internal.ErrTimesheetNotFound))

			_, err = repo.GetSheetByOwnerAndWeek(1, monday)
			Expect(err).To(Equal(internal.ErrTimesheetNotFound))
		})

		It("enforces one sheet per owner and week", func() {
			newSheet(1, monday, timesheet.StatusDraft)

			dup := &timesheet.TimeSheet{UserID: 1, WeekStart: monday, Status: timesheet.StatusDraft}
			Expect(repo.CreateSheet(dup)).NotTo(Succeed())
		})

		It("persists status transitions via SaveSheet", func() {
			sheet := newSheet(1, monday, timesheet.StatusDraft)

			now := time.Now().UTC().Truncate(time.Second)
			sheet.Status = timesheet.StatusSubmitted
			sheet.SubmittedAt = &now
			sheet.IntegrityHash = "deadbeef"
			Expect(repo.SaveSheet(sheet)).To(Succeed())

			stored, err := repo.GetSheetByID(sheet.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(timesheet.StatusSubmitted))
			Expect(stored.SubmittedAt).NotTo(BeNil())
			Expect(stored.IntegrityHash).To(Equal("deadbeef"))
		})

		It("lists an owner's sheets newest week first", func() {
			newSheet(1, monday, timesheet.StatusDraft)
			newSheet(1, monday.AddDate(0, 0, 7), timesheet.StatusDraft)
			newSheet(2, monday, timesheet.StatusDraft)

			sheets, err := repo.ListSheetsByOwner(1, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(sheets).To(HaveLen(2))
			Expect(sheets[0].WeekStart.After(sheets[1].WeekStart)).To(BeTrue())
		})
	})

	Describe("entries", func() {
		It("sums minutes and counts rows per sheet", func() {
			sheet := newSheet(1, monday, timesheet.StatusDraft)
			newEntry(sheet.ID, 1, 10, 240)
			newEntry(sheet.ID, 1, 20, 240)

			total, count, err := repo.SumEntries(sheet.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(480)))
			Expect(count).To(Equal(int64(2)))
		})

		It("returns zero for a sheet without entries", func() {
			sheet := newSheet(1, monday, timesheet.StatusDraft)

			total, count, err := repo.SumEntries(sheet.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
			Expect(count).To(BeZero())
		})

		It("deletes entries", func() {
			sheet := newSheet(1, monday, timesheet.StatusDraft)
			entry := newEntry(sheet.ID, 1, 10, 240)

			Expect(repo.DeleteEntry(entry.ID)).To(Succeed())
			_, err := repo.GetEntryByID(entry.ID)
			Expect(err).To(Equal(internal.ErrEntryNotFound))
		})

		It("lists distinct project ids referenced by a sheet", func() {
			sheet := newSheet(1, monday, timesheet.StatusDraft)
			newEntry(sheet.ID, 1, 10, 60)
			newEntry(sheet.ID, 1, 10, 60)
			newEntry(sheet.ID, 1, 20, 60)

			ids, err := repo.ProjectIDsForSheet(sheet.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(ConsistOf(int64(10), int64(20)))
		})
	})

	Describe("approvals", func() {
		It("enforces one approval per sheet and validator", func() {
			sheet := newSheet(1, monday, timesheet.StatusSubmitted)

			Expect(repo.CreateApproval(&timesheet.Approval{
				TimesheetID: sheet.ID, ValidatorID: 3, Status: timesheet.ApprovalStatusPending,
			})).To(Succeed())

			Expect(repo.CreateApproval(&timesheet.Approval{
				TimesheetID: sheet.ID, ValidatorID: 3, Status: timesheet.ApprovalStatusPending,
			})).NotTo(Succeed())
		})

		It("bulk-rejects only the still-pending approvals", func() {
			sheet := newSheet(1, monday, timesheet.StatusApproved)

			decided := &timesheet.Approval{
				TimesheetID: sheet.ID, ValidatorID: 3, Status: timesheet.ApprovalStatusApproved, Comment: "looks good",
			}
			pending := &timesheet.Approval{
				TimesheetID: sheet.ID, ValidatorID: 4, Status: timesheet.ApprovalStatusPending,
			}
			Expect(repo.CreateApproval(decided)).To(Succeed())
			Expect(repo.CreateApproval(pending)).To(Succeed())

			affected, err := repo.RejectPendingApprovals(sheet.ID, timesheet.ReopenSystemComment, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(affected).To(Equal(int64(1)))

			kept, err := repo.GetApproval(sheet.ID, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(kept.Status).To(Equal(timesheet.ApprovalStatusApproved))
			Expect(kept.Comment).To(Equal("looks good"))

			rejected, err := repo.GetApproval(sheet.ID, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.Status).To(Equal(timesheet.ApprovalStatusRejected))
			Expect(rejected.Comment).To(Equal(timesheet.ReopenSystemComment))
		})

		It("lists a validator's pending approvals only", func() {
			first := newSheet(1, monday, timesheet.StatusSubmitted)
			second := newSheet(2, monday, timesheet.StatusSubmitted)

			Expect(repo.CreateApproval(&timesheet.Approval{
				TimesheetID: first.ID, ValidatorID: 3, Status: timesheet.ApprovalStatusPending,
			})).To(Succeed())
			Expect(repo.CreateApproval(&timesheet.Approval{
				TimesheetID: second.ID, ValidatorID: 3, Status: timesheet.ApprovalStatusApproved,
			})).To(Succeed())

			pending, err := repo.ListPendingApprovalsForValidator(3, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].TimesheetID).To(Equal(first.ID))
		})
	})

	Describe("directory lookups", func() {
		It("returns active validators assigned to the given projects", func() {
			newUser(3, "active@example.com", "validator", true)
			newUser(4, "inactive@example.com", "validator", false)
			newUser(5, "unassigned@example.com", "validator", true)
			Expect(db.Create(&SQLiteProjectValidator{ProjectID: 10, UserID: 3}).Error).To(Succeed())
			Expect(db.Create(&SQLiteProjectValidator{ProjectID: 10, UserID: 4}).Error).To(Succeed())

			validators, err := repo.ValidatorsForProjects([]int64{10})
			Expect(err).NotTo(HaveOccurred())
			Expect(validators).To(HaveLen(1))
			Expect(validators[0].ID).To(Equal(int64(3)))
		})

		It("returns active validators and admins as approvers", func() {
			newUser(3, "validator@example.com", "validator", true)
			newUser(4, "admin@example.com", "admin", true)
			newUser(5, "user@example.com", "user", true)
			newUser(6, "gone@example.com", "admin", false)

			approvers, err := repo.ActiveApprovers()
			Expect(err).NotTo(HaveOccurred())
			Expect(approvers).To(HaveLen(2))
		})

		It("maps missing users to the not-found sentinel", func() {
			_, err := repo.UserByID(42)
			Expect(err).To(Equal(internal.ErrUserNotFound))
		})
	})

	Describe("notifications", func() {
		It("serializes the payload as JSON", func() {
			Expect(repo.CreateNotification(&timesheet.Notification{
				ID:          "4f6c3a9e-0000-0000-0000-000000000001",
				RecipientID: 3,
				Type:        timesheet.NotificationSubmitted,
				Title:       "Timesheet awaiting your review",
				Payload:     map[string]interface{}{"timesheet_id": 7},
			})).To(Succeed())

			var stored SQLiteNotification
			Expect(db.First(&stored).Error).To(Succeed())
			Expect(stored.Payload).To(ContainSubstring(`"timesheet_id":7`))
		})
	})

	Describe("InTransaction", func() {
		It("rolls back every write when the callback fails", func() {
			err := repo.InTransaction(func(tx timesheet.Repository) error {
				sheet := &timesheet.TimeSheet{UserID: 1, WeekStart: monday, Status: timesheet.StatusDraft}
				if err := tx.CreateSheet(sheet); err != nil {
					return err
				}
				return errors.New("boom")
			})
			Expect(err).To(HaveOccurred())

			_, err = repo.GetSheetByOwnerAndWeek(1, monday)
			Expect(err).To(Equal(internal.ErrTimesheetNotFound))
		})

		It("commits when the callback succeeds", func() {
			err := repo.InTransaction(func(tx timesheet.Repository) error {
				sheet := &timesheet.TimeSheet{UserID: 1, WeekStart: monday, Status: timesheet.StatusDraft}
				return tx.CreateSheet(sheet)
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.GetSheetByOwnerAndWeek(1, monday)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
