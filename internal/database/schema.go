package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	GenerationRunning   string = "RUNNING"
	GenerationSucceeded string = "SUCCEEDED"
	GenerationFailed    string = "FAILED"
)

type Generation struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Prompt  string `gorm:"not null"`
	Size    string `gorm:"size:20;not null"`
	Quality string `gorm:"size:20;not null"`

	Status       string `gorm:"size:20;not null"`
	ErrorMessage sql.NullString

	// Storage key of the zip archive, set once the archive has been stored.
	ArchiveKey sql.NullString

	CreationTime   time.Time
	CompletionTime sql.NullTime

	Images []GenerationImage `gorm:"foreignKey:GenerationId;constraint:OnDelete:CASCADE"`
}

type GenerationImage struct {
	GenerationId uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position     int       `gorm:"primaryKey;autoIncrement:false"`

	Location string `gorm:"not null"`

	// Name of the archive entry, null if the image could not be fetched.
	ArchiveEntry    sql.NullString
	FetchStatusCode int
	FetchError      sql.NullString
}
