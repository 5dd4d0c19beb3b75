package app

import "errors"

var (
	// ErrStoreRequired is returned by New when neither a store nor a database URL is configured.
	ErrStoreRequired = errors.New("store or database URL required")

	// ErrEmptyTranslation means a translation row exists without any verses.
	// This is a data integrity fault of the seeded corpus.
	ErrEmptyTranslation = errors.New("translation has no verses")
	// ErrCorpusGap means the sampler drew a book or chapter that has no rows.
	ErrCorpusGap = errors.New("corpus structure has gaps")
)
