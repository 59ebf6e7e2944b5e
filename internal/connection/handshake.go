package connection

import (
	"context"
	"fmt"
	"strconv"

	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/protocol"
)

type handshakeCommand struct {
	id   string
	args domain.Args
}

func (cmd handshakeCommand) ID() string {
	return cmd.id
}

func (cmd handshakeCommand) Arguments() domain.Args {
	return cmd.args
}

// handshake negotiates RESP3 and selects the logical database. Any refusal
// is reported as a communication error since the connection is unusable.
func (conn *Conn) handshake(ctx context.Context) error {
	if conn.params.Protocol == protocol.RESP3 {
		hello := handshakeCommand{id: "HELLO", args: domain.Args{[]byte("3")}}

		reply, err := conn.exchange(ctx, hello)
		if hasError(err) {
			return err
		}

		if reply.Kind != domain.KindMap && reply.Kind != domain.KindArray {
			return conn.refused("HELLO", reply)
		}
	}

	if conn.params.Database > 0 {
		selectDB := handshakeCommand{id: "SELECT", args: domain.Args{[]byte(strconv.Itoa(conn.params.Database))}}

		reply, err := conn.exchange(ctx, selectDB)
		if hasError(err) {
			return err
		}

		if !reply.IsOK() {
			return conn.refused("SELECT", reply)
		}
	}

	return nil
}

func (conn *Conn) exchange(ctx context.Context, cmd domain.Command) (*domain.Reply, error) {
	if err := conn.write(ctx, protocol.Serialize(cmd)); hasError(err) {
		return nil, err
	}

	return conn.readReply(ctx)
}

func (conn *Conn) refused(step string, reply *domain.Reply) error {
	return domain.NewCommunicationError(conn.params.Endpoint(), fmt.Errorf("%s refused: %s", step, reply))
}
