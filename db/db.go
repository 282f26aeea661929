package db

import (
	"Gin_postgres_library_management/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	err = Migrate(DB)
	if err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Book{}, &models.Loan{}); err != nil {
		return err
	}

	// 数据库层兜底：在馆数永远在 [0, total] 之间
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s_copies_range;
	`, models.BookTable, models.BookTable)).Error; err != nil {
		return err
	}
	if err := db.Exec(fmt.Sprintf(`
	  ALTER TABLE %s ADD CONSTRAINT %s_copies_range
	  CHECK (available_copies >= 0 AND available_copies <= total_copies);
	`, models.BookTable, models.BookTable)).Error; err != nil {
		return err
	}

	// open loans per book are queried on every borrow/stats call
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_book_due
	  ON %s (book_id, due_date)
	  WHERE return_date IS NULL;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	return nil
}
