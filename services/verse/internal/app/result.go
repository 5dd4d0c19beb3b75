package app

import "bibleapi/pkg/domain"

// Result is the outcome of Resolve. It is one of Found,
// TranslationNotFound, ReferenceNotFound or InvalidParameter.
type Result interface {
	isResult()
}

// Found carries a resolved passage.
type Found struct {
	Passage domain.Passage
}

// TranslationNotFound means the requested translation identifier has no row.
type TranslationNotFound struct {
	Identifier string
}

// ReferenceNotFound means the reference could not be parsed, or one of its
// ranges did not resolve in the translation.
type ReferenceNotFound struct {
	Reference string
}

// InvalidParameter means a query parameter carried an unsupported value.
type InvalidParameter struct {
	Name  string
	Value string
}

func (Found) isResult()               {}
func (TranslationNotFound) isResult() {}
func (ReferenceNotFound) isResult()   {}
func (InvalidParameter) isResult()    {}

// Public error messages.
const (
	MsgTranslationNotFound = "translation not found"
	MsgNotFound            = "not found"
	MsgInvalidParameter    = "unrecognized value for parameter"
)

// ErrorMessage returns the client-facing message for a non-Found result.
func ErrorMessage(r Result) (string, bool) {
	switch r.(type) {
	case TranslationNotFound:
		return MsgTranslationNotFound, true
	case ReferenceNotFound:
		return MsgNotFound, true
	case InvalidParameter:
		return MsgInvalidParameter, true
	default:
		return "", false
	}
}
