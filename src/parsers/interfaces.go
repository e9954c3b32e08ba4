package parsers

import (
	"io"

	"github.com/username/plusvalia/src/models"
)

// Parser turns a raw statement feed into normalized statement entries.
// Each parser owns the wire format of one source.
type Parser interface {
	Parse(file io.Reader) ([]models.StatementEntry, error)
}
