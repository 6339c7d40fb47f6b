package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample departments and sensitive areas for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := initGormDB(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := gormDB.Exec("DELETE FROM department_sensitive_areas").Error; err != nil {
				log.Fatalf("failed to clear sensitive areas: %v", err)
			}
			if err := gormDB.Exec("DELETE FROM departments").Error; err != nil {
				log.Fatalf("failed to clear departments: %v", err)
			}
			fmt.Println("Cleared existing department data")
		}

		departments := []struct {
			id, name, description string
			areas                 []string
		}{
			{"dept-finance", "Finance", "Financial reporting and treasury", []string{"Treasury vault", "Payment processing room"}},
			{"dept-hr", "Human Resources", "People operations", nil},
			{"dept-it", "Information Technology", "Systems and infrastructure", []string{"Server room"}},
			{"dept-warehouse", "Warehouse", "Inventory and logistics", nil},
		}

		for _, d := range departments {
			var exists int
			row := gormDB.Raw("SELECT 1 FROM departments WHERE id = ?", d.id).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("department %s already exists; skipping\n", d.id)
				continue
			}

			if err := gormDB.Exec(
				"INSERT INTO departments (id, name, description, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
				d.id, d.name, d.description,
			).Error; err != nil {
				log.Fatalf("failed to insert department %s: %v", d.id, err)
			}

			for _, area := range d.areas {
				if err := gormDB.Exec(
					"INSERT INTO department_sensitive_areas (dept_id, name, created_at) VALUES (?, ?, now())",
					d.id, area,
				).Error; err != nil {
					log.Fatalf("failed to insert sensitive area for %s: %v", d.id, err)
				}
			}

			fmt.Printf("Seeded department %s (%d sensitive areas)\n", d.name, len(d.areas))
		}
	},
}
