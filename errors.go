package minizip

import "errors"

// Code is one of the error taxonomy values surfaced by every public
// operation, per the error codes table in the spec this package implements.
type Code int

const (
	// CodeOK is not used as an error; it exists so Code's zero value never
	// aliases a real failure.
	CodeOK Code = iota
	CodeParam
	CodeFormat
	CodeStream
	CodeMem
	CodeCRC
	CodeSupport
	CodeExist
	CodeEndOfStream
	CodeEndOfList
	CodeInternal
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeParam:
		return "param error"
	case CodeFormat:
		return "format error"
	case CodeStream:
		return "stream error"
	case CodeMem:
		return "mem error"
	case CodeCRC:
		return "crc error"
	case CodeSupport:
		return "support error"
	case CodeExist:
		return "exist error"
	case CodeEndOfStream:
		return "end of stream"
	case CodeEndOfList:
		return "end of list"
	default:
		return "internal error"
	}
}

// Error wraps an underlying cause with the operation that failed and a
// Code drawn from the taxonomy above. Use errors.Is/As against the Code
// sentinels below, or inspect Err for the wrapped cause.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Code.String() + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Code.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match a format or parameter error against ErrFormat or
// ErrParam even when Err carries a more specific cause.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrFormat:
		return e.Code == CodeFormat
	case ErrParam:
		return e.Code == CodeParam
	}
	return false
}

func newError(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// Sentinel errors for errors.Is comparisons that don't need an Op/cause.
var (
	// ErrEndOfList terminates iteration; it is not a failure to the caller.
	ErrEndOfList = errors.New("end of list")
	// ErrNotExist is returned by LocateEntry and Stat when no entry has the
	// requested name.
	ErrNotExist = errors.New("does not exist")
	// ErrSupport is returned for a compression/encryption method that isn't
	// registered, or an attribute conversion between unrelated host systems.
	ErrSupport = errors.New("unsupported")
	// ErrCRC is returned when a fully-consumed entry's computed CRC32
	// doesn't match the stored value.
	ErrCRC = errors.New("crc mismatch")
	// ErrFormat is returned for any structurally invalid archive content.
	ErrFormat = errors.New("malformed zip")
	// ErrParam is returned for invalid call parameters (nil handle, cursor
	// out of range, forbidden mode/option combination).
	ErrParam = errors.New("invalid parameter")
)

func isCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsEndOfList reports whether err is the iteration terminator.
func IsEndOfList(err error) bool {
	return errors.Is(err, ErrEndOfList) || isCode(err, CodeEndOfList)
}

// IsNotExist reports whether err signals an absent optional field.
func IsNotExist(err error) bool {
	return errors.Is(err, ErrNotExist) || isCode(err, CodeExist)
}

// IsSupportError reports whether err signals an unregistered codec/cipher
// method or an unsupported attribute-family conversion.
func IsSupportError(err error) bool {
	return errors.Is(err, ErrSupport) || isCode(err, CodeSupport)
}
