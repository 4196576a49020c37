package timesheet_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apperrors "github.com/frahmantamala/timesheet-management/internal"
	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

var _ = Describe("PolicyGate", func() {
	var (
		repo  *mockRepo
		gate  *timesheet.PolicyGate
		sheet *timesheet.TimeSheet

		owner     *coreuser.User
		manager   *coreuser.User
		validator *coreuser.User
		admin     *coreuser.User
		outsider  *coreuser.User
	)

	BeforeEach(func() {
		repo = newMockRepo()
		gate = timesheet.NewPolicyGate(repo)

		managerID := int64(2)
		owner = &coreuser.User{ID: 1, Role: coreuser.RoleUser, ManagerID: &managerID, IsActive: true}
		manager = &coreuser.User{ID: 2, Role: coreuser.RoleValidator, IsActive: true}
		validator = &coreuser.User{ID: 3, Role: coreuser.RoleValidator, IsActive: true}
		admin = &coreuser.User{ID: 4, Role: coreuser.RoleAdmin, IsActive: true}
		outsider = &coreuser.User{ID: 5, Role: coreuser.RoleUser, IsActive: true}
		for _, u := range []*coreuser.User{owner, manager, validator, admin, outsider} {
			repo.users[u.ID] = u
		}

		repo.projectValidators[10] = []int64{validator.ID}

		sheet = &timesheet.TimeSheet{UserID: owner.ID, Status: timesheet.StatusApproved}
		Expect(repo.CreateSheet(sheet)).To(Succeed())
		Expect(repo.CreateEntry(&timesheet.TimeEntry{
			UserID:      owner.ID,
			TimesheetID: sheet.ID,
			ProjectID:   10,
			EntryDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Minutes:     480,
		})).To(Succeed())
	})

	Describe("CanMutateEntry", func() {
		It("allows the owner and admins, denies everyone else", func() {
			Expect(gate.CanMutateEntry(owner, owner.ID).Allowed()).To(BeTrue())
			Expect(gate.CanMutateEntry(admin, owner.ID).Allowed()).To(BeTrue())

			d := gate.CanMutateEntry(outsider, owner.ID)
			Expect(d.Allowed()).To(BeFalse())
			Expect(d.Reason()).To(Equal(apperrors.ErrEntryAccessDenied))
		})
	})

	Describe("CanSubmit", func() {
		It("allows only the sheet owner", func() {
			Expect(gate.CanSubmit(owner, sheet).Allowed()).To(BeTrue())

			d := gate.CanSubmit(admin, sheet)
			Expect(d.Allowed()).To(BeFalse())
			Expect(d.Reason()).To(Equal(apperrors.ErrNotOwner))
		})
	})

	Describe("CanDecide", func() {
		It("requires a pending approval row for non-admins", func() {
			d, err := gate.CanDecide(validator, sheet)
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Allowed()).To(BeFalse())
			Expect(d.Reason()).To(Equal(apperrors.ErrNotValidator))

			Expect(repo.CreateApproval(&timesheet.Approval{
				TimesheetID: sheet.ID,
				ValidatorID: validator.ID,
				Status:      timesheet.ApprovalStatusPending,
			})).To(Succeed())

			d, err = gate.CanDecide(validator, sheet)
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Allowed()).To(BeTrue())
		})

		It("denies a validator whose approval is already decided", func() {
			Expect(repo.CreateApproval(&timesheet.Approval{
				TimesheetID: sheet.ID,
				ValidatorID: validator.ID,
				Status:      timesheet.ApprovalStatusApproved,
			})).To(Succeed())

			d, err := gate.CanDecide(validator, sheet)
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Allowed()).To(BeFalse())
			Expect(d.Reason()).To(Equal(apperrors.ErrApprovalAlreadyDecided))
		})

		It("always allows admins", func() {
			d, err := gate.CanDecide(admin, sheet)
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Allowed()).To(BeTrue())
		})
	})

	Describe("CanReopen", func() {
		It("denies the owner before considering any role they hold", func() {
			adminOwner := &coreuser.User{ID: 6, Role: coreuser.RoleAdmin, IsActive: true}
			repo.users[adminOwner.ID] = adminOwner
			ownSheet := &timesheet.TimeSheet{UserID: adminOwner.ID, Status: timesheet.StatusApproved}
			Expect(repo.CreateSheet(ownSheet)).To(Succeed())

			d, err := gate.CanReopen(adminOwner, ownSheet)
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Allowed()).To(BeFalse())
			Expect(d.Reason()).To(Equal(apperrors.ErrOwnerCannotReopen))
		})

		It("allows admins, resolved validators and the owner's manager", func() {
			for _, actor := range []*coreuser.User{admin, validator, manager} {
				d, err := gate.CanReopen(actor, sheet)
				Expect(err).ToNot(HaveOccurred())
				Expect(d.Allowed()).To(BeTrue(), "actor %d should be allowed", actor.ID)
			}
		})

		It("denies everyone else", func() {
			d, err := gate.CanReopen(outsider, sheet)
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Allowed()).To(BeFalse())
			Expect(d.Reason()).To(Equal(apperrors.ErrNotValidator))
		})
	})

	Describe("CanView", func() {
		It("allows the owner, admins, validators with a row and the manager", func() {
			for _, actor := range []*coreuser.User{owner, admin, validator, manager} {
				d, err := gate.CanView(actor, sheet)
				Expect(err).ToNot(HaveOccurred())
				Expect(d.Allowed()).To(BeTrue(), "actor %d should be allowed", actor.ID)
			}

			d, err := gate.CanView(outsider, sheet)
			Expect(err).ToNot(HaveOccurred())
			Expect(d.Allowed()).To(BeFalse())
		})
	})
})
