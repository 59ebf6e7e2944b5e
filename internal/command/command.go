package command

import (
	"strings"

	"github.com/luiz-simples/redix/internal/domain"
)

// Command is an immutable request value. Derived commands (prefixed keys)
// are new values; the original is never touched.
type Command struct {
	id   string
	args domain.Args
	spec *Spec
}

// New builds a command outside any profile: no arity checks and no known
// key positions.
func New(id string, values ...any) (*Command, error) {
	args, err := Args(values...)
	if hasError(err) {
		return nil, err
	}

	return newCommand(id, args, nil)
}

// MustNew is New for literals known to be valid.
func MustNew(id string, values ...any) *Command {
	cmd, err := New(id, values...)
	if hasError(err) {
		panic(err)
	}
	return cmd
}

func newCommand(id string, args domain.Args, spec *Spec) (*Command, error) {
	id = strings.TrimSpace(id)
	if isEmpty(id) {
		return nil, domain.ErrEmptyCommandID
	}

	return &Command{id: strings.ToUpper(id), args: args, spec: spec}, nil
}

func (cmd *Command) ID() string {
	return cmd.id
}

// Arguments returns the wire arguments. The slice is shared and must not be
// modified.
func (cmd *Command) Arguments() domain.Args {
	return cmd.args
}

func (cmd *Command) Spec() *Spec {
	return cmd.spec
}

func (cmd *Command) Keys() domain.Args {
	positions := cmd.keyPositions()
	keys := make(domain.Args, 0, len(positions))

	for _, position := range positions {
		keys = append(keys, cmd.args[position])
	}

	return keys
}

// Decode maps a reply through the command's decoder, falling back to the
// raw reply when the command has none.
func (cmd *Command) Decode(reply *domain.Reply) (any, error) {
	if cmd.spec == nil || cmd.spec.Decoder == nil {
		return Raw.Decode(reply)
	}

	return cmd.spec.Decoder.Decode(reply)
}

// WithKeyPrefix returns a copy whose key arguments are prefixed.
func (cmd *Command) WithKeyPrefix(prefix string) *Command {
	positions := cmd.keyPositions()
	if isEmpty(prefix) || len(positions) == 0 {
		return cmd
	}

	args := make(domain.Args, len(cmd.args))
	copy(args, cmd.args)

	for _, position := range positions {
		args[position] = append([]byte(prefix), cmd.args[position]...)
	}

	return &Command{id: cmd.id, args: args, spec: cmd.spec}
}

func (cmd *Command) String() string {
	parts := make([]string, 0, len(cmd.args)+1)
	parts = append(parts, cmd.id)

	for _, arg := range cmd.args {
		parts = append(parts, string(arg))
	}

	return strings.Join(parts, " ")
}

func (cmd *Command) keyPositions() []int {
	if cmd.spec == nil {
		return nil
	}

	return cmd.spec.Keys.Positions(cmd.args)
}
