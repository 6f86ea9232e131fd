package model

// SchemaStep marks a named data fix in db/migrate.go as done. It's
// bookkeeping only and survives a stats clear.
type SchemaStep struct {
	ID         int64  `gorm:"primaryKey"`
	Name       string `gorm:"uniqueIndex;not null"`
	Statements int    `gorm:"not null;default:0"`
	AppliedAt  int64  `gorm:"not null"` // unix ms
}

func (SchemaStep) TableName() string { return "schema_steps" }
