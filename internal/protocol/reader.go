package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

const (
	MaxLineLength      = 64 * 1024
	MaxBulkLength      = 512 * 1024 * 1024
	MaxAggregateLength = 1<<31 - 1

	// preallocLimit caps the capacity reserved from an aggregate header;
	// longer aggregates grow while their elements arrive.
	preallocLimit = 1024
)

var crlf = []byte("\r\n")

// Reader is the byte-level contract the parser needs from a transport.
type Reader interface {
	// ReadLine returns the next line without its trailing CRLF.
	ReadLine() ([]byte, error)
	// ReadN returns exactly n bytes.
	ReadN(n int) ([]byte, error)
}

type bufferedReader struct {
	reader *bufio.Reader
}

func NewReader(source io.Reader) Reader {
	if reader, ok := source.(*bufio.Reader); ok {
		return &bufferedReader{reader: reader}
	}

	return &bufferedReader{reader: bufio.NewReader(source)}
}

func NewBytesReader(data []byte) Reader {
	return NewReader(bytes.NewReader(data))
}

func (buffered *bufferedReader) ReadLine() ([]byte, error) {
	return ReadLine(buffered.reader)
}

func (buffered *bufferedReader) ReadN(n int) ([]byte, error) {
	return ReadN(buffered.reader, n)
}

// ReadLine reads up to and including CRLF from reader and strips the terminator.
func ReadLine(reader *bufio.Reader) ([]byte, error) {
	var line []byte

	for {
		fragment, err := reader.ReadSlice('\n')

		if isEmpty(err) {
			line = append(line, fragment...)
			break
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			line = append(line, fragment...)
			if exceedsLine(line) {
				return nil, errLineTooLong()
			}
			continue
		}

		if errors.Is(err, io.EOF) && len(line)+len(fragment) > 0 {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	if exceedsLine(line) {
		return nil, errLineTooLong()
	}

	if !bytes.HasSuffix(line, crlf) {
		return nil, errMissingCRLF()
	}

	return line[:len(line)-len(crlf)], nil
}

func ReadN(reader *bufio.Reader, n int) ([]byte, error) {
	buffer := make([]byte, n)

	_, err := io.ReadFull(reader, buffer)
	if hasError(err) {
		return nil, err
	}

	return buffer, nil
}
