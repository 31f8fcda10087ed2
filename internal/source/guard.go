package source

import (
	"fmt"
	"strings"
)

// ValidateReadOnlySQL checks query text before it may be executed: a
// single SELECT statement, no semicolons, no write or DDL keywords, and a
// LIMIT clause (appended with the given cap when absent). Every query the
// sqlite source assembles runs through it; callers holding externally
// supplied SQL must do the same. Returns the cleaned query or an error.
func ValidateReadOnlySQL(sql string, limitRows int) (string, error) {
	cleaned := strings.Join(strings.Fields(strings.TrimSpace(sql)), " ")
	lower := strings.ToLower(cleaned)

	if !strings.HasPrefix(lower, "select") {
		return "", fmt.Errorf("only SELECT statements are allowed")
	}
	if strings.Contains(cleaned, ";") {
		return "", fmt.Errorf("semicolons are not allowed")
	}
	forbidden := []string{" insert ", " update ", " delete ", " merge ", " drop ", " alter ", " create "}
	padded := " " + lower + " "
	for _, word := range forbidden {
		if strings.Contains(padded, word) {
			return "", fmt.Errorf("only read-only queries are allowed")
		}
	}
	if !strings.Contains(padded, " limit ") {
		cleaned = fmt.Sprintf("%s LIMIT %d", cleaned, limitRows)
	}
	return cleaned, nil
}
