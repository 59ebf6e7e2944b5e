package protocol

import (
	"strconv"

	"github.com/luiz-simples/redix/internal/domain"
)

const (
	nullLength = -1
	trailerLen = 2
)

func hasError(err error) bool {
	return err != nil
}

func isEmpty(err error) bool {
	return err == nil
}

func exceedsLine(line []byte) bool {
	return len(line) > MaxLineLength
}

func errLineTooLong() error {
	return domain.NewProtocolError("line exceeds %d bytes", MaxLineLength)
}

func errMissingCRLF() error {
	return domain.NewProtocolError("line is not terminated by CRLF")
}

// parseLength parses the decimal header of bulk and aggregate replies.
// A header that is not a number is never defaulted.
func parseLength(prefix byte, payload []byte) (int, error) {
	length, err := strconv.Atoi(string(payload))
	if hasError(err) {
		return 0, domain.NewProtocolError("invalid length header %q for type %q", payload, prefix)
	}

	if length < nullLength {
		return 0, domain.NewProtocolError("negative length header %d for type %q", length, prefix)
	}

	return length, nil
}

// parseAggregateLength is parseLength for element counts.
func parseAggregateLength(prefix byte, payload []byte) (int, error) {
	count, err := parseLength(prefix, payload)
	if hasError(err) {
		return 0, err
	}

	if count > MaxAggregateLength {
		return 0, domain.NewProtocolError("aggregate length %d exceeds %d for type %q", count, MaxAggregateLength, prefix)
	}

	return count, nil
}

func isNullLength(length int) bool {
	return length == nullLength
}
