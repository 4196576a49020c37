package timesheet_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	coreuser "github.com/frahmantamala/timesheet-management/internal/core/user"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
)

var _ = Describe("Resolver", func() {
	var (
		repo     *mockRepo
		resolver *timesheet.Resolver
		sheet    *timesheet.TimeSheet
		owner    *coreuser.User
	)

	addEntry := func(sheetID, projectID int64) {
		Expect(repo.CreateEntry(&timesheet.TimeEntry{
			UserID:      owner.ID,
			TimesheetID: sheetID,
			ProjectID:   projectID,
			EntryDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			Minutes:     60,
		})).To(Succeed())
	}

	resolvedIDs := func() []int64 {
		users, err := resolver.Resolve(sheet)
		Expect(err).ToNot(HaveOccurred())
		ids := make([]int64, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		return ids
	}

	BeforeEach(func() {
		repo = newMockRepo()
		resolver = timesheet.NewResolver(repo)

		owner = &coreuser.User{ID: 1, Role: coreuser.RoleUser, IsActive: true}
		repo.users[owner.ID] = owner

		sheet = &timesheet.TimeSheet{UserID: owner.ID, Status: timesheet.StatusDraft}
		Expect(repo.CreateSheet(sheet)).To(Succeed())
	})

	It("collects project validators across every referenced project", func() {
		v1 := &coreuser.User{ID: 10, Role: coreuser.RoleValidator, IsActive: true}
		v2 := &coreuser.User{ID: 11, Role: coreuser.RoleValidator, IsActive: true}
		repo.users[v1.ID] = v1
		repo.users[v2.ID] = v2
		repo.projectValidators[100] = []int64{v1.ID}
		repo.projectValidators[200] = []int64{v2.ID}

		addEntry(sheet.ID, 100)
		addEntry(sheet.ID, 200)

		Expect(resolvedIDs()).To(ConsistOf(v1.ID, v2.ID))
	})

	It("deduplicates a validator shared by several projects who is also the manager", func() {
		shared := &coreuser.User{ID: 10, Role: coreuser.RoleValidator, IsActive: true}
		repo.users[shared.ID] = shared
		repo.projectValidators[100] = []int64{shared.ID}
		repo.projectValidators[200] = []int64{shared.ID}
		owner.ManagerID = &shared.ID

		addEntry(sheet.ID, 100)
		addEntry(sheet.ID, 200)

		Expect(resolvedIDs()).To(Equal([]int64{shared.ID}))
	})

	It("includes the owner's active manager alongside project validators", func() {
		v := &coreuser.User{ID: 10, Role: coreuser.RoleValidator, IsActive: true}
		mgr := &coreuser.User{ID: 20, Role: coreuser.RoleUser, IsActive: true}
		repo.users[v.ID] = v
		repo.users[mgr.ID] = mgr
		repo.projectValidators[100] = []int64{v.ID}
		owner.ManagerID = &mgr.ID

		addEntry(sheet.ID, 100)

		Expect(resolvedIDs()).To(ConsistOf(v.ID, mgr.ID))
	})

	It("skips an inactive manager", func() {
		mgr := &coreuser.User{ID: 20, Role: coreuser.RoleValidator, IsActive: false}
		admin := &coreuser.User{ID: 30, Role: coreuser.RoleAdmin, IsActive: true}
		repo.users[mgr.ID] = mgr
		repo.users[admin.ID] = admin
		owner.ManagerID = &mgr.ID

		addEntry(sheet.ID, 100)

		// nothing resolved directly, so the fallback set applies
		Expect(resolvedIDs()).To(ConsistOf(admin.ID))
	})

	It("falls back to every active validator and admin, excluding the owner", func() {
		v := &coreuser.User{ID: 10, Role: coreuser.RoleValidator, IsActive: true}
		inactive := &coreuser.User{ID: 11, Role: coreuser.RoleValidator, IsActive: false}
		admin := &coreuser.User{ID: 30, Role: coreuser.RoleAdmin, IsActive: true}
		plain := &coreuser.User{ID: 40, Role: coreuser.RoleUser, IsActive: true}
		repo.users[v.ID] = v
		repo.users[inactive.ID] = inactive
		repo.users[admin.ID] = admin
		repo.users[plain.ID] = plain

		addEntry(sheet.ID, 100)

		Expect(resolvedIDs()).To(ConsistOf(v.ID, admin.ID))
	})

	It("excludes an owner who is themselves a validator from the fallback", func() {
		owner.Role = coreuser.RoleValidator
		other := &coreuser.User{ID: 10, Role: coreuser.RoleValidator, IsActive: true}
		repo.users[other.ID] = other

		addEntry(sheet.ID, 100)

		Expect(resolvedIDs()).To(ConsistOf(other.ID))
	})

	It("is deterministic for identical directory state", func() {
		v1 := &coreuser.User{ID: 10, Role: coreuser.RoleValidator, IsActive: true}
		v2 := &coreuser.User{ID: 11, Role: coreuser.RoleValidator, IsActive: true}
		repo.users[v1.ID] = v1
		repo.users[v2.ID] = v2
		repo.projectValidators[100] = []int64{v1.ID, v2.ID}

		addEntry(sheet.ID, 100)

		first := resolvedIDs()
		for i := 0; i < 5; i++ {
			Expect(resolvedIDs()).To(Equal(first))
		}
	})

	Describe("IsResolvedValidator", func() {
		It("matches only members of the resolved set", func() {
			v := &coreuser.User{ID: 10, Role: coreuser.RoleValidator, IsActive: true}
			repo.users[v.ID] = v
			repo.projectValidators[100] = []int64{v.ID}

			addEntry(sheet.ID, 100)

			ok, err := resolver.IsResolvedValidator(sheet, v.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeTrue())

			ok, err = resolver.IsResolvedValidator(sheet, 999)
			Expect(err).ToNot(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
