package services

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophtodo/internal/common"
)

// Column limits of the users and tasks tables. Checking them here gives both
// dialects the same validation error; SQLite would not enforce them at all.
const (
	maxUsernameLength = 50
	maxEmailLength    = 100
	maxTagLength      = 100
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

func tooLong(v string, max int) bool {
	return utf8.RuneCountInString(v) > max
}

func lengthError(field string, max int) error {
	return fmt.Errorf("%w: %s must be at most %d characters", common.ErrorValidation, field, max)
}

// storeError keeps the sentinels callers branch on and classifies any other
// failure as common.ErrorInternal. The cause stays in the chain for logging.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{common.ErrorNotFound, common.ErrorAlreadyExists, common.ErrorValidation} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, common.ErrorInternal, err)
}
