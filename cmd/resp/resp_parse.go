package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// Resp protocol's data types
const (
	RespStatus    = '+' // +<string>\r\n
	RespError     = '-' // -<string>\r\n
	RespString    = '$' // $<length>\r\n<bytes>\r\n
	RespInt       = ':' // :<number>\r\n
	RespNil       = '_' // _\r\n
	RespFloat     = ',' // ,<floating-point-number>\r\n (golang float)
	RespBool      = '#' // true: #t\r\n false: #f\r\n
	RespBlobError = '!' // !<length>\r\n<bytes>\r\n
	RespVerbatim  = '=' // =<length>\r\nFORMAT:<bytes>\r\n
	RespBigInt    = '(' // (<big number>\r\n
	RespArray     = '*' // *<len>\r\n... (same as resp2)
	RespMap       = '%' // %<len>\r\n(key)\r\n(value)\r\n... (golang map)
	RespSet       = '~' // ~<len>\r\n... (same as Array)
	RespAttr      = '|' // |<len>\r\n(key)\r\n(value)\r\n... + command reply
	RespPush      = '>' // ><len>\r\n... (same as Array)
)

const (
	ErrEmptyLine    = errors.ConstError("ERR Protocol error: empty line")
	ErrInvalidLen   = errors.ConstError("ERR Protocol error: invalid length")
	ErrBulkTooLarge = errors.ConstError("ERR Protocol error: invalid bulk length")
	ErrArrayTooLong = errors.ConstError("ERR Protocol error: invalid multibulk length")
	ErrTooDeep      = errors.ConstError("ERR Protocol error: too many nested arrays")
	ErrMissingCRLF  = errors.ConstError("ERR Protocol error: expected CRLF after bulk string")
)

const (
	// DefaultMaxBulkLen caps bulk string payloads unless a Reader says otherwise.
	DefaultMaxBulkLen = 512 << 20
	// DefaultMaxArrayLen caps the number of elements in one array.
	DefaultMaxArrayLen = 1024 * 1024
	// MaxDepth is how deep arrays may nest. A request is a single array
	// of bulk strings, so only replies ever nest.
	MaxDepth = 8

	// Up-front allocations are capped; larger values grow as data arrives.
	bulkChunk = 64 << 10
	arrayHint = 1024
)

// ReplyError is an error reply sent by the other side.
type ReplyError string

func (e ReplyError) Error() string { return string(e) }

// Reader decodes RESP values from a buffered stream.
type Reader struct {
	r           *bufio.Reader
	MaxBulkLen  int64
	MaxArrayLen int
}

func NewReader(r *bufio.Reader) *Reader {
	return &Reader{r: r, MaxBulkLen: DefaultMaxBulkLen, MaxArrayLen: DefaultMaxArrayLen}
}

// Buffered returns the number of bytes already read from the stream but
// not decoded yet.
func (rd *Reader) Buffered() int {
	return rd.r.Buffered()
}

// Read decodes one value using the default limits.
func Read(r *bufio.Reader) (any, error) {
	return NewReader(r).Read()
}

// Read decodes one value. Lines without a type prefix are inline
// commands and come back as a plain string.
func (rd *Reader) Read() (any, error) {
	return rd.read(0)
}

func (rd *Reader) read(depth int) (any, error) {
	l, err := rd.r.ReadString('\n')
	if err != nil {
		if err == io.EOF && l != "" {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}

	line := strings.TrimRight(l, "\r\n")
	if line == "" {
		return nil, ErrEmptyLine
	}

	switch line[0] {
	case RespNil:
		return nil, nil
	case RespBool:
		return len(line) > 1 && line[1] == 't', nil
	case RespInt:
		n, err := strconv.ParseInt(line[1:], 10, 64)
		if err != nil {
			return nil, errors.Annotatef(ErrInvalidLen, "integer %q", line[1:])
		}
		return int(n), nil
	case RespStatus:
		return line[1:], nil
	case RespError:
		return ReplyError(line[1:]), nil
	case RespString:
		return rd.readString(line)
	case RespArray, RespSet, RespPush:
		if depth >= MaxDepth {
			return nil, ErrTooDeep
		}
		return rd.readSlice(line, depth+1)
	}

	return line, nil
}

func (rd *Reader) readString(line string) (any, error) {
	n, err := replyLen(line)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	if int64(n) > rd.MaxBulkLen {
		return nil, ErrBulkTooLarge
	}

	var buf bytes.Buffer
	buf.Grow(min(n, bulkChunk))
	if _, err := io.CopyN(&buf, rd.r, int64(n)); err != nil {
		return nil, errors.Trace(unexpectedEOF(err))
	}

	var crlf [2]byte
	if _, err := io.ReadFull(rd.r, crlf[:]); err != nil {
		return nil, errors.Trace(unexpectedEOF(err))
	}
	if crlf != [2]byte{'\r', '\n'} {
		return nil, ErrMissingCRLF
	}

	return buf.String(), nil
}

func (rd *Reader) readSlice(line string, depth int) (any, error) {
	n, err := replyLen(line)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	if n > rd.MaxArrayLen {
		return nil, ErrArrayTooLong
	}

	arr := make([]any, 0, min(n, arrayHint))
	for i := 0; i < n; i++ {
		v, err := rd.read(depth)
		if err != nil {
			return nil, err
		}

		arr = append(arr, v)
	}

	return arr, nil
}

func replyLen(line string) (int, error) {
	n, err := strconv.Atoi(line[1:])
	if err != nil || n < -1 {
		return 0, ErrInvalidLen
	}

	return n, nil
}

// unexpectedEOF reports a stream that ends inside a value.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
