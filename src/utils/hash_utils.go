package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashStatementEntry creates a stable identifier for a statement entry so
// re-uploaded statements do not duplicate operations.
func HashStatementEntry(dateISO, description, isin string, quantity, amount float64) string {
	input := fmt.Sprintf("%s|%s|%s|%f|%f", dateISO, description, isin, quantity, amount)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}
