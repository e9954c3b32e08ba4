package parsers

import (
	"fmt"

	"github.com/username/plusvalia/src/parsers/statement"
)

func GetParser(source string) (Parser, error) {
	switch source {
	case "statement":
		return statement.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
