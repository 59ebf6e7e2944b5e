package protocol

import (
	"github.com/tidwall/redcon"

	"github.com/luiz-simples/redix/internal/domain"
)

// Serialize frames a command as an array of bulk strings. The framing is the
// same for RESP2 and RESP3.
func Serialize(command domain.Command) []byte {
	return AppendCommand(nil, command)
}

func AppendCommand(dst []byte, command domain.Command) []byte {
	args := command.Arguments()

	dst = redcon.AppendArray(dst, len(args)+1)
	dst = redcon.AppendBulkString(dst, command.ID())

	for _, arg := range args {
		dst = redcon.AppendBulk(dst, arg)
	}

	return dst
}

func SerializeAll(commands []domain.Command) []byte {
	var dst []byte

	for _, command := range commands {
		dst = AppendCommand(dst, command)
	}

	return dst
}
