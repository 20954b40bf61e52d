package database

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	config "github.com/lawqena/exam_portal/configs"
	"github.com/lawqena/exam_portal/models"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	dsn := config.Config("DATABASE_URL")

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		PrepareStmt:            false,
		SkipDefaultTransaction: true,
		DisableForeignKeyConstraintWhenMigrating: true,
		DisableNestedTransaction:                 true,
		TranslateError:                           true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.ExamSettings{},
		&models.Question{},
		&models.ExamAttempt{},
		&models.AttemptQuestion{},
		&models.AttemptAnswer{},
		&models.Certificate{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

func SeedAdmin() {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")

	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
		return
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
		return
	}

	adminUser := models.User{
		Username: "admin",
		FullName: config.Config("ADMIN_FULL_NAME"),
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
		return
	}

	log.Println("✅ Admin user seeded successfully")
}

// SeedSubjects creates the faculty's subject list on first boot. Existing
// subjects are left untouched so admin edits survive restarts.
func SeedSubjects() {
	subjectNames := []string{
		"المدخل لدراسة الفقه الإسلامي",
		"علم الإجرام والعقاب",
		"اللغة الإنجليزية",
		"حقوق الإنسان",
		"العلوم السياسية",
		"تاريخ النظم الاجتماعية",
		"مدخل العلوم القانونية",
	}

	for _, name := range subjectNames {
		var count int64
		if err := DB.Model(&models.Subject{}).Where("name = ?", name).Count(&count).Error; err != nil {
			log.Printf("🔥 Failed to check subject %q: %v", name, err)
			continue
		}
		if count > 0 {
			continue
		}

		subject := models.Subject{Name: name}
		err := DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&subject).Error; err != nil {
				return err
			}
			settings := models.DefaultExamSettings(subject.ID)
			return tx.Create(&settings).Error
		})
		if err != nil {
			log.Printf("🔥 Failed to seed subject %q: %v", name, err)
		}
	}

	log.Println("✅ Subjects seeded successfully")
}
