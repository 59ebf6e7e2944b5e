package replication

import (
	"strings"
)

func hasError(err error) bool {
	return err != nil
}

func normalizeCommandName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
