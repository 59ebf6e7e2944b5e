package command

import (
	"strings"
)

func hasError(err error) bool {
	return err != nil
}

func isEmpty(data string) bool {
	return len(data) == 0
}

func normalizeCommandName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
