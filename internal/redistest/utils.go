package redistest

import (
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/luiz-simples/redix/internal/domain"
)

var (
	errNotInteger = errors.New("ERR value is not an integer or out of range")
	errSyntax     = errors.New("ERR syntax error")
	errReadOnly   = errors.New("READONLY You can't write against a read only replica.")
)

const (
	noArgs   = 0
	firstArg = 1
)

func hasError(err error) bool {
	return err != nil
}

func isEmpty(data string) bool {
	return len(data) == 0
}

func emptyArgs(args domain.Args) bool {
	return len(args) == noArgs
}

func normalizeCommandName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func newInvalidArgsError(commandName string) *domain.Reply {
	return domain.NewError("ERR wrong number of arguments for '" + strings.ToLower(commandName) + "' command")
}

func newUnknownCommandError(commandName string) *domain.Reply {
	return domain.NewError("ERR unknown command '" + commandName + "'")
}

func errorReply(err error) *domain.Reply {
	return domain.NewError(err.Error())
}

func keysOf(args domain.Args) []string {
	keys := make([]string, 0, len(args))
	for _, arg := range args {
		keys = append(keys, string(arg))
	}
	return keys
}

func splitEndpoint(endpoint string) (string, int64) {
	host, port, err := net.SplitHostPort(endpoint)
	if hasError(err) {
		return endpoint, 0
	}

	value, _ := strconv.ParseInt(port, 10, 64)
	return host, value
}
