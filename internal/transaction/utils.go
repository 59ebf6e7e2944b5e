package transaction

import (
	"github.com/luiz-simples/redix/internal/command"
	"github.com/luiz-simples/redix/internal/domain"
)

var (
	cmdMulti   = command.MustNew("MULTI")
	cmdExec    = command.MustNew("EXEC")
	cmdDiscard = command.MustNew("DISCARD")
	cmdUnwatch = command.MustNew("UNWATCH")
)

func hasError(err error) bool {
	return err != nil
}

func watchCommand(keys domain.Args) *command.Command {
	return command.MustNew("WATCH", keys)
}

// replyError turns an error reply into a Go error; other replies give nil.
func replyError(reply *domain.Reply) error {
	if reply.IsError() {
		return reply.Err
	}
	return nil
}

// propagates reports block errors that leave the transaction salvageable.
func propagates(err error) bool {
	return domain.IsCommunicationError(err) || domain.IsServerError(err)
}

func keyArgs(keys []string) domain.Args {
	args := make(domain.Args, len(keys))
	for index, key := range keys {
		args[index] = []byte(key)
	}
	return args
}

func decode(cmd domain.Command, reply *domain.Reply) (any, error) {
	if decoder, ok := cmd.(domain.Decoder); ok {
		return decoder.Decode(reply)
	}

	return reply, nil
}
