package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"approvals", "time_entries", "timesheets", "notifications", "project_validators", "sub_projects", "projects", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUser := func(email, name, role string, managerID *int64) int64 {
			var id int64
			row := db.Raw("SELECT id FROM users WHERE email = ?", email).Row()
			if err := row.Scan(&id); err == nil {
				fmt.Printf("user %s already exists\n", email)
				return id
			}

			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, auth_provider, manager_id, totp_secret, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, 'password', ?, '', true, now(), now())",
				email, name, string(hash), role, managerID,
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", email, err)
			}
			if err := db.Raw("SELECT id FROM users WHERE email = ?", email).Row().Scan(&id); err != nil {
				log.Fatalf("failed to lookup user id for %s: %v", email, err)
			}
			fmt.Println("Seeded user:", email)
			return id
		}

		adminID := seedUser("padil@mail.com", "Padil Admin", "admin", nil)
		managerID := seedUser("rani@mail.com", "Rani Manager", "validator", &adminID)
		seedUser("fadhil@mail.com", "Fadhil", "user", &managerID)
		seedUser("sari@mail.com", "Sari", "user", &managerID)

		projects := []struct {
			Name     string
			Billable bool
			Subs     []string
		}{
			{"internal-tooling", false, []string{"build pipeline", "developer portal"}},
			{"client-acme", true, []string{"discovery", "implementation", "support"}},
			{"client-globex", true, []string{"migration"}},
		}

		for _, p := range projects {
			var pid int64
			row := db.Raw("SELECT id FROM projects WHERE name = ?", p.Name).Row()
			if err := row.Scan(&pid); err != nil {
				if err := db.Exec(
					"INSERT INTO projects (name, billable, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())",
					p.Name, p.Billable,
				).Error; err != nil {
					log.Fatalf("failed to insert project %s: %v", p.Name, err)
				}
				if err := db.Raw("SELECT id FROM projects WHERE name = ?", p.Name).Row().Scan(&pid); err != nil {
					log.Fatalf("failed to lookup project id for %s: %v", p.Name, err)
				}
				fmt.Printf("Seeded project: %s\n", p.Name)
			}

			for _, sub := range p.Subs {
				var exists int
				row := db.Raw("SELECT 1 FROM sub_projects WHERE project_id = ? AND name = ?", pid, sub).Row()
				if err := row.Scan(&exists); err != nil {
					if err := db.Exec(
						"INSERT INTO sub_projects (project_id, name, is_active, created_at, updated_at) VALUES (?, ?, true, now(), now())",
						pid, sub,
					).Error; err != nil {
						log.Fatalf("failed to insert sub project %s: %v", sub, err)
					}
				}
			}

			var exists int
			row = db.Raw("SELECT 1 FROM project_validators WHERE project_id = ? AND user_id = ?", pid, managerID).Row()
			if err := row.Scan(&exists); err != nil {
				if err := db.Exec(
					"INSERT INTO project_validators (project_id, user_id, created_at) VALUES (?, ?, now())",
					pid, managerID,
				).Error; err != nil {
					log.Fatalf("failed to assign validator to project %s: %v", p.Name, err)
				}
			}
		}

		fmt.Println("Projects and validator assignments seeded successfully")
	},
}
