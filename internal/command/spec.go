package command

import (
	"fmt"

	"github.com/luiz-simples/redix/internal/domain"
)

// Spec describes one command. MinArgs and MaxArgs count the identifier,
// MaxArgs -1 means unbounded.
type Spec struct {
	Name    string
	MinArgs int
	MaxArgs int
	Keys    KeyRule
	Since   string
	Aliases []string
	Decoder domain.Decoder
}

func (spec *Spec) validate(argCount int) error {
	if argCount < spec.MinArgs || (spec.MaxArgs >= 0 && argCount > spec.MaxArgs) {
		return fmt.Errorf("%w for '%s' command", domain.ErrWrongArity, spec.Name)
	}

	return nil
}

func (spec *Spec) clone() *Spec {
	copied := *spec
	copied.Aliases = append([]string(nil), spec.Aliases...)
	return &copied
}

func define(name string, minArgs, maxArgs int, keys KeyRule, decoder domain.Decoder, aliases ...string) *Spec {
	return &Spec{
		Name:    name,
		MinArgs: minArgs,
		MaxArgs: maxArgs,
		Keys:    keys,
		Decoder: decoder,
		Aliases: aliases,
	}
}
