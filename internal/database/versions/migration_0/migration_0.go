package migration_0

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Generation struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Prompt  string `gorm:"not null"`
	Size    string `gorm:"size:20;not null"`
	Quality string `gorm:"size:20;not null"`

	Status       string `gorm:"size:20;not null"`
	ErrorMessage sql.NullString
	ArchiveKey   sql.NullString

	CreationTime   time.Time
	CompletionTime sql.NullTime

	Images []GenerationImage `gorm:"foreignKey:GenerationId;constraint:OnDelete:CASCADE"`
}

type GenerationImage struct {
	GenerationId uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position     int       `gorm:"primaryKey;autoIncrement:false"`

	Location string `gorm:"not null"`

	ArchiveEntry    sql.NullString
	FetchStatusCode int
	FetchError      sql.NullString
}

func Migration(db *gorm.DB) error {
	if err := db.AutoMigrate(&Generation{}, &GenerationImage{}); err != nil {
		return fmt.Errorf("initial migration failed: %w", err)
	}
	return nil
}

func Rollback(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&GenerationImage{}, &Generation{}); err != nil {
		return fmt.Errorf("error dropping generation tables: %w", err)
	}
	return nil
}
