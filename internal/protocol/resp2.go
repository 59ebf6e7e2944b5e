package protocol

import "github.com/luiz-simples/redix/internal/domain"

type resp2 struct{}

func (resp2) Version() int {
	return RESP2
}

func (parser resp2) Parse(reader Reader) (*domain.Reply, error) {
	return decode(reader, parser)
}

func (resp2) decodeExtended(prefix byte, _ []byte, _ Reader) (*domain.Reply, error) {
	return nil, domain.NewProtocolError("unknown RESP2 type prefix %q", prefix)
}
