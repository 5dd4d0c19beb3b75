package store

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"bibleapi/pkg/domain"
)

const migrateLockID int64 = 73217321

const defaultInsertBatchSize = 500

type GormStoreOptions struct {
	AutoMigrate bool
	BatchSize   int
}

type GormStoreOption func(*GormStoreOptions)

// WithAutoMigrate creates or updates the schema when the store is opened.
// The HTTP service opens the store read-only; the importer migrates.
func WithAutoMigrate() GormStoreOption {
	return func(opts *GormStoreOptions) {
		opts.AutoMigrate = true
	}
}

// WithBatchSize sets how many verse rows are inserted per statement.
func WithBatchSize(size int) GormStoreOption {
	return func(opts *GormStoreOptions) {
		opts.BatchSize = size
	}
}

// GormStore implements Store and Importer using GORM.
type GormStore struct {
	db        *gorm.DB
	dialect   string
	batchSize int
}

// NewGormStore opens the database named by databaseURL (postgres://, mysql://,
// sqlite:// or file:).
func NewGormStore(databaseURL string, options ...GormStoreOption) (*GormStore, error) {
	opts := GormStoreOptions{}
	for _, option := range options {
		if option != nil {
			option(&opts)
		}
	}
	dialector, dialect, err := openDialector(databaseURL)
	if err != nil {
		return nil, err
	}
	gormLog := gormlogger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultInsertBatchSize
	}
	s := &GormStore{db: db, dialect: dialect, batchSize: batchSize}
	if opts.AutoMigrate {
		if err := s.Migrate(context.Background()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Migrate creates the translations and verses tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.withMigrationLock(ctx, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&TranslationModel{}, &VerseModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	})
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withMigrationLock serializes concurrent migrations on Postgres with an
// advisory lock. Other dialects migrate directly.
func (s *GormStore) withMigrationLock(ctx context.Context, fn func(*gorm.DB) error) error {
	db := s.db.WithContext(ctx)
	if s.dialect != dialectPostgres {
		return fn(db)
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(context.Background(), conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// GetTranslation looks up a translation by its exact identifier.
func (s *GormStore) GetTranslation(ctx context.Context, identifier string) (domain.Translation, bool, error) {
	var model TranslationModel
	if err := s.db.WithContext(ctx).Where("identifier = ?", identifier).Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Translation{}, false, nil
		}
		return domain.Translation{}, false, err
	}
	return translationFromModel(model), true, nil
}

// ListTranslations returns all translations ordered by language and name.
func (s *GormStore) ListTranslations(ctx context.Context) ([]domain.Translation, error) {
	var models []TranslationModel
	if err := s.db.WithContext(ctx).Order("language ASC").Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return lo.Map(models, func(m TranslationModel, _ int) domain.Translation {
		return translationFromModel(m)
	}), nil
}

// ResolveRangeStart returns the smallest verse id at loc.
func (s *GormStore) ResolveRangeStart(ctx context.Context, translationID int64, loc domain.Location) (int64, bool, error) {
	return s.resolveEndpoint(ctx, translationID, loc, false)
}

// ResolveRangeEnd returns the largest verse id at loc. For a chapter-only
// location this is the last verse of the chapter.
func (s *GormStore) ResolveRangeEnd(ctx context.Context, translationID int64, loc domain.Location) (int64, bool, error) {
	return s.resolveEndpoint(ctx, translationID, loc, true)
}

func (s *GormStore) resolveEndpoint(ctx context.Context, translationID int64, loc domain.Location, last bool) (int64, bool, error) {
	q := s.db.WithContext(ctx).Model(&VerseModel{}).Select("id").
		Where("translation_id = ? AND book_id = ? AND chapter = ?", translationID, loc.Book, loc.Chapter)
	if loc.HasVerse() {
		q = q.Where("verse = ?", loc.Verse)
	}
	var model VerseModel
	err := q.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: last}).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return model.ID, true, nil
}

// ListVersesBetween returns the verses with startID <= id <= endID in id order.
func (s *GormStore) ListVersesBetween(ctx context.Context, translationID, startID, endID int64) ([]domain.Verse, error) {
	var models []VerseModel
	if err := s.db.WithContext(ctx).
		Where("translation_id = ? AND id BETWEEN ? AND ?", translationID, startID, endID).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	return lo.Map(models, func(m VerseModel, _ int) domain.Verse {
		return verseFromModel(m)
	}), nil
}

// MaxBookNum returns the highest book number of a translation.
func (s *GormStore) MaxBookNum(ctx context.Context, translationID int64) (int, error) {
	return s.maxOf(ctx, "book_num", "translation_id = ?", translationID)
}

// BookNameByNum returns the translation's display name for a book number.
func (s *GormStore) BookNameByNum(ctx context.Context, translationID int64, bookNum int) (string, bool, error) {
	var model VerseModel
	err := s.db.WithContext(ctx).Model(&VerseModel{}).Select("book").
		Where("translation_id = ? AND book_num = ?", translationID, bookNum).
		Order("id ASC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return model.Book, true, nil
}

// MaxChapter returns the highest chapter number of a book.
func (s *GormStore) MaxChapter(ctx context.Context, translationID int64, bookNum int) (int, error) {
	return s.maxOf(ctx, "chapter", "translation_id = ? AND book_num = ?", translationID, bookNum)
}

// MaxVerse returns the highest verse number of a chapter.
func (s *GormStore) MaxVerse(ctx context.Context, translationID int64, bookNum, chapter int) (int, error) {
	return s.maxOf(ctx, "verse", "translation_id = ? AND book_num = ? AND chapter = ?", translationID, bookNum, chapter)
}

func (s *GormStore) maxOf(ctx context.Context, column string, where string, args ...any) (int, error) {
	var value sql.NullInt64
	row := s.db.WithContext(ctx).Model(&VerseModel{}).
		Select("MAX(" + column + ")").
		Where(where, args...).
		Row()
	if err := row.Scan(&value); err != nil {
		return 0, err
	}
	if !value.Valid {
		return 0, nil
	}
	return int(value.Int64), nil
}

// BookNamesByID maps translation id to that translation's name for bookID.
func (s *GormStore) BookNamesByID(ctx context.Context, bookID string) (map[int64]string, error) {
	var rows []struct {
		TranslationID int64
		Book          string
	}
	if err := s.db.WithContext(ctx).Model(&VerseModel{}).
		Select("translation_id, book").
		Where("book_id = ?", bookID).
		Group("translation_id, book").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(rows))
	for _, row := range rows {
		if _, ok := out[row.TranslationID]; !ok {
			out[row.TranslationID] = row.Book
		}
	}
	return out, nil
}

// Ready reports whether the verses table exists.
func (s *GormStore) Ready(ctx context.Context) (bool, error) {
	return s.db.WithContext(ctx).Migrator().HasTable(&VerseModel{}), nil
}

// ReplaceTranslation upserts t by identifier and replaces all of its verses
// in one transaction.
func (s *GormStore) ReplaceTranslation(ctx context.Context, t domain.Translation, verses []domain.Verse) (domain.Translation, error) {
	model := translationToModel(t)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing TranslationModel
		err := tx.Where("identifier = ?", model.Identifier).Take(&existing).Error
		switch {
		case err == nil:
			model.ID = existing.ID
			if err := tx.Save(&model).Error; err != nil {
				return fmt.Errorf("update translation: %w", err)
			}
			if err := tx.Where("translation_id = ?", model.ID).Delete(&VerseModel{}).Error; err != nil {
				return fmt.Errorf("delete verses: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			model.ID = 0
			if err := tx.Create(&model).Error; err != nil {
				return fmt.Errorf("create translation: %w", err)
			}
		default:
			return fmt.Errorf("find translation: %w", err)
		}
		if len(verses) == 0 {
			return nil
		}
		models := lo.Map(SortCanonical(verses), func(v domain.Verse, _ int) VerseModel {
			m := verseToModel(v)
			m.ID = 0
			m.TranslationID = model.ID
			return m
		})
		if err := tx.CreateInBatches(models, s.batchSize).Error; err != nil {
			return fmt.Errorf("insert verses: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Translation{}, err
	}
	return translationFromModel(model), nil
}

// SortCanonical returns a copy of verses ordered by book number, chapter and verse.
func SortCanonical(verses []domain.Verse) []domain.Verse {
	out := slices.Clone(verses)
	slices.SortStableFunc(out, func(a, b domain.Verse) int {
		return cmp.Or(
			cmp.Compare(a.BookNum, b.BookNum),
			cmp.Compare(a.Chapter, b.Chapter),
			cmp.Compare(a.Verse, b.Verse),
		)
	})
	return out
}

func translationToModel(t domain.Translation) TranslationModel {
	return TranslationModel{
		ID:           t.ID,
		Identifier:   t.Identifier,
		Language:     t.Language,
		LanguageCode: t.LanguageCode,
		Name:         t.Name,
		License:      t.License,
	}
}

func translationFromModel(m TranslationModel) domain.Translation {
	return domain.Translation{
		ID:           m.ID,
		Identifier:   m.Identifier,
		Language:     m.Language,
		LanguageCode: m.LanguageCode,
		Name:         m.Name,
		License:      m.License,
	}
}

func verseToModel(v domain.Verse) VerseModel {
	return VerseModel{
		ID:            v.ID,
		TranslationID: v.TranslationID,
		BookID:        v.BookID,
		Book:          v.Book,
		BookNum:       v.BookNum,
		Chapter:       v.Chapter,
		Verse:         v.Verse,
		Text:          v.Text,
	}
}

func verseFromModel(m VerseModel) domain.Verse {
	return domain.Verse{
		ID:            m.ID,
		TranslationID: m.TranslationID,
		BookID:        m.BookID,
		Book:          m.Book,
		BookNum:       m.BookNum,
		Chapter:       m.Chapter,
		Verse:         m.Verse,
		Text:          m.Text,
	}
}
