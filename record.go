package execshim

import (
	"strconv"

	"golang.org/x/xerrors"
)

// Record describes one observed process-creation attempt. It exists only
// long enough to be serialized and written; nothing retains or aggregates
// records across calls.
type Record struct {
	// Method is the name of the entry point that was called, e.g. "execv"
	// or "posix_spawnp".
	Method string `json:"method"`
	PPID   int    `json:"ppid"`
	PID    int    `json:"pid"`
	// PWD is the working directory of the calling process at the time of
	// the call.
	PWD string `json:"pwd"`
	// Arguments is the raw argv of the call, including argv[0], in its
	// original order.
	Arguments []string `json:"arguments"`
}

// AppendWire appends the single-line wire form of r to buf and returns the
// extended buffer. The line always ends with a newline. Key order is fixed:
// method, ppid, pid, pwd, arguments.
//
// String values escape double-quote, backslash, backspace, form-feed,
// newline and carriage-return as two-character sequences; every other byte,
// including non-ASCII bytes, passes through unchanged. This is not the same
// dialect encoding/json emits, and DecodeWire must be used to read it back.
func (r *Record) AppendWire(buf []byte) []byte {
	buf = append(buf, `{"method": `...)
	buf = appendEscaped(buf, r.Method)
	buf = append(buf, `, "ppid": `...)
	buf = strconv.AppendInt(buf, int64(r.PPID), 10)
	buf = append(buf, `, "pid": `...)
	buf = strconv.AppendInt(buf, int64(r.PID), 10)
	buf = append(buf, `, "pwd": `...)
	buf = appendEscaped(buf, r.PWD)
	buf = append(buf, `, "arguments": [`...)
	for i, arg := range r.Arguments {
		if i > 0 {
			buf = append(buf, ", "...)
		}
		buf = appendEscaped(buf, arg)
	}
	buf = append(buf, "]}\n"...)
	return buf
}

func appendEscaped(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\b':
			buf = append(buf, '\\', 'b')
		case '\f':
			buf = append(buf, '\\', 'f')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		default:
			buf = append(buf, c)
		}
	}
	return append(buf, '"')
}

// DecodeWire parses one record in the exact form AppendWire produces. The
// trailing newline is optional; anything else after the closing brace is an
// error.
func DecodeWire(line []byte) (*Record, error) {
	p := wireParser{buf: line}

	rec := &Record{Arguments: []string{}}
	var err error
	if err = p.literal(`{"method": `); err != nil {
		return nil, err
	}
	if rec.Method, err = p.readString(); err != nil {
		return nil, xerrors.Errorf("method: %w", err)
	}
	if err = p.literal(`, "ppid": `); err != nil {
		return nil, err
	}
	if rec.PPID, err = p.readInt(); err != nil {
		return nil, xerrors.Errorf("ppid: %w", err)
	}
	if err = p.literal(`, "pid": `); err != nil {
		return nil, err
	}
	if rec.PID, err = p.readInt(); err != nil {
		return nil, xerrors.Errorf("pid: %w", err)
	}
	if err = p.literal(`, "pwd": `); err != nil {
		return nil, err
	}
	if rec.PWD, err = p.readString(); err != nil {
		return nil, xerrors.Errorf("pwd: %w", err)
	}
	if err = p.literal(`, "arguments": [`); err != nil {
		return nil, err
	}
	for !p.consume(']') {
		if len(rec.Arguments) > 0 {
			if err = p.literal(`, `); err != nil {
				return nil, err
			}
		}
		arg, err := p.readString()
		if err != nil {
			return nil, xerrors.Errorf("argument %d: %w", len(rec.Arguments), err)
		}
		rec.Arguments = append(rec.Arguments, arg)
	}
	if err = p.literal(`}`); err != nil {
		return nil, err
	}
	p.consume('\n')
	if p.pos != len(p.buf) {
		return nil, xerrors.Errorf("trailing data at offset %d", p.pos)
	}
	return rec, nil
}

type wireParser struct {
	buf []byte
	pos int
}

func (p *wireParser) literal(lit string) error {
	if len(p.buf)-p.pos < len(lit) || string(p.buf[p.pos:p.pos+len(lit)]) != lit {
		return xerrors.Errorf("expected %q at offset %d", lit, p.pos)
	}
	p.pos += len(lit)
	return nil
}

func (p *wireParser) consume(c byte) bool {
	if p.pos < len(p.buf) && p.buf[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *wireParser) readString() (string, error) {
	if !p.consume('"') {
		return "", xerrors.Errorf("expected opening quote at offset %d", p.pos)
	}
	var out []byte
	for p.pos < len(p.buf) {
		c := p.buf[p.pos]
		p.pos++
		switch c {
		case '"':
			return string(out), nil
		case '\\':
			if p.pos >= len(p.buf) {
				return "", xerrors.New("unterminated escape")
			}
			e := p.buf[p.pos]
			p.pos++
			switch e {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			default:
				return "", xerrors.Errorf("unknown escape %q at offset %d", e, p.pos-1)
			}
		default:
			out = append(out, c)
		}
	}
	return "", xerrors.New("unterminated string")
}

func (p *wireParser) readInt() (int, error) {
	start := p.pos
	p.consume('-')
	for p.pos < len(p.buf) && p.buf[p.pos] >= '0' && p.buf[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.Atoi(string(p.buf[start:p.pos]))
	if err != nil {
		return 0, xerrors.Errorf("expected integer at offset %d", start)
	}
	return n, nil
}
