package statement

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/username/plusvalia/src/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// StatementParser decodes the normalized JSON statement feed: one array of
// entry objects, already flattened by the broker statement exporter.
type StatementParser struct{}

func NewParser() *StatementParser {
	return &StatementParser{}
}

func (p *StatementParser) Parse(file io.Reader) ([]models.StatementEntry, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement feed: %w", err)
	}

	var entries []models.StatementEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode statement feed: %w", err)
	}
	return entries, nil
}
