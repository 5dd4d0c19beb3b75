package store

// GORM models used for persistence.
type TranslationModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Identifier   string `gorm:"size:32;uniqueIndex;not null"`
	Language     string `gorm:"size:64;not null"`
	LanguageCode string `gorm:"size:16;not null"`
	Name         string `gorm:"not null"`
	License      string `gorm:"type:text"`
}

func (TranslationModel) TableName() string { return "translations" }

// VerseModel rows are inserted in canonical order; the location index serves
// endpoint resolution and the structure index serves the sampler aggregates.
type VerseModel struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	TranslationID int64  `gorm:"not null;index:idx_verses_location,priority:1;index:idx_verses_structure,priority:1"`
	BookID        string `gorm:"size:8;not null;index:idx_verses_location,priority:2"`
	Book          string `gorm:"size:64;not null"`
	BookNum       int    `gorm:"not null;index:idx_verses_structure,priority:2"`
	Chapter       int    `gorm:"not null;index:idx_verses_location,priority:3;index:idx_verses_structure,priority:3"`
	Verse         int    `gorm:"not null;index:idx_verses_location,priority:4;index:idx_verses_structure,priority:4"`
	Text          string `gorm:"type:text;not null"`
}

func (VerseModel) TableName() string { return "verses" }
