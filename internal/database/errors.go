package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSerializationFailure marks a transaction Postgres aborted to break a
// deadlock or a serialization conflict. The transaction cannot continue; the
// whole unit of work has to be submitted again.
var ErrSerializationFailure = errors.New("transaction aborted by a concurrent transaction")

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// TranslateError tags driver errors callers need to tell apart. Anything else
// is returned unchanged.
func TranslateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%w: %w", ErrSerializationFailure, err)
		}
	}
	return err
}

// LikeEscape goes after every `LIKE ?` built from ContainsPattern.
const LikeEscape = ` ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern turns user text into a lower-cased LIKE pattern that matches
// it literally anywhere in the column.
func ContainsPattern(v string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(v)) + "%"
}
