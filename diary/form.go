package diary

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/moyoez/diary-upload-go/types"
)

const MaxTitleLength = 100

var (
	ErrEmptyEntry = errors.New("Please write something before submitting!")
	ErrEmptyTitle = errors.New("Please give the entry a title.")
)

// ValidateEntry rejects blank diary text.
func ValidateEntry(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyEntry
	}
	return nil
}

// ValidateTitle requires 1 to MaxTitleLength characters.
func ValidateTitle(title string) error {
	n := len([]rune(strings.TrimSpace(title)))
	if n == 0 {
		return ErrEmptyTitle
	}
	if n > MaxTitleLength {
		return fmt.Errorf("Title must be at most %d characters.", MaxTitleLength)
	}
	return nil
}

// CharacterCount renders the live counter under the text area. Length is
// counted in UTF-16 code units, the way a browser reports it.
func CharacterCount(text string) string {
	return fmt.Sprintf("%d characters", len(utf16.Encode([]rune(text))))
}

// DateLine formats t as "Monday, January 2, 2006".
func DateLine(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// Validate checks a whole entry. The title is only checked when present,
// since the quick-entry form has none.
func Validate(req types.DiaryValidateRequest) types.DiaryValidateResponse {
	resp := types.DiaryValidateResponse{Valid: true, Characters: CharacterCount(req.Text)}
	if err := ValidateEntry(req.Text); err != nil {
		resp.Valid = false
		resp.Message = err.Error()
		return resp
	}
	if req.Title != "" {
		if err := ValidateTitle(req.Title); err != nil {
			resp.Valid = false
			resp.Message = err.Error()
		}
	}
	return resp
}
