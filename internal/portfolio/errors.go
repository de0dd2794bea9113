package portfolio

import (
	"errors"

	"github.com/starford/folio/internal/apperr"
)

// errUnchanged aborts a Replace cycle without writing.
var errUnchanged = errors.New("unchanged")

func errUnknownCounter(name string) error {
	return apperr.Invalid("counter", "unknown counter "+name)
}
