package trace

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joshuapare/segheap/internal/mmfile"
)

// Header limits. MaxIDs bounds the id table Parse allocates; opsPrealloc
// caps the op slice capacity taken from the header.
const (
	MaxIDs      = 1 << 24
	opsPrealloc = 1 << 16
)

// OpKind is the operation code of a trace line.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	}
	return fmt.Sprintf("OpKind(%q)", byte(k))
}

// Op is one trace operation. Size is unused for OpFree.
type Op struct {
	Kind OpKind
	ID   int
	Size int
}

// Trace is a parsed trace file.
type Trace struct {
	Name          string
	SuggestedHeap int
	NumIDs        int
	Weight        int
	Ops           []Op
}

// Load parses the trace file at path. The trace is named after the file.
func Load(path string) (*Trace, error) {
	m, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open: %w", err)
	}
	defer m.Close()

	t, err := Parse(bytes.NewReader(m.Data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Name = filepath.Base(path)
	return t, nil
}

// Parse reads a trace. It rejects ids outside the declared range, negative
// sizes, an op count that disagrees with the header, and ops that use an id
// out of order (alloc of a live id, realloc or free of a dead one).
func Parse(r io.Reader) (*Trace, error) {
	sc := bufio.NewScanner(r)
	t := &Trace{}
	var header [4]int
	nh := 0
	line := 0
	var live []bool

	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}

		if nh < len(header) {
			v, err := strconv.Atoi(text)
			if err != nil || v < 0 {
				return nil, fmt.Errorf("%w: line %d: bad header value %q", ErrBadTrace, line, text)
			}
			header[nh] = v
			nh++
			if nh == len(header) {
				t.SuggestedHeap, t.NumIDs, t.Weight = header[0], header[1], header[3]
				if t.NumIDs > MaxIDs {
					return nil, fmt.Errorf("%w: line %d: id count %d exceeds %d", ErrBadTrace, line, t.NumIDs, MaxIDs)
				}
				t.Ops = make([]Op, 0, min(header[2], opsPrealloc))
				live = make([]bool, t.NumIDs)
			}
			continue
		}

		op, err := parseOp(text, t.NumIDs)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadTrace, line, err)
		}
		switch {
		case op.Kind == OpAlloc && live[op.ID]:
			return nil, fmt.Errorf("%w: line %d: id %d allocated twice", ErrBadTrace, line, op.ID)
		case op.Kind != OpAlloc && !live[op.ID]:
			return nil, fmt.Errorf("%w: line %d: %s of id %d which is not live", ErrBadTrace, line, op.Kind, op.ID)
		}
		live[op.ID] = op.Kind != OpFree
		t.Ops = append(t.Ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: read: %w", err)
	}

	if nh < len(header) {
		return nil, fmt.Errorf("%w: header has %d of 4 values", ErrBadTrace, nh)
	}
	if len(t.Ops) != header[2] {
		return nil, fmt.Errorf("%w: header declares %d ops, found %d", ErrBadTrace, header[2], len(t.Ops))
	}
	return t, nil
}

func parseOp(text string, ids int) (Op, error) {
	fields := strings.Fields(text)
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("unknown op %q", fields[0])
	}

	op := Op{Kind: OpKind(fields[0][0])}
	want := 3
	switch op.Kind {
	case OpAlloc, OpRealloc:
	case OpFree:
		want = 2
	default:
		return Op{}, fmt.Errorf("unknown op %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%s takes %d fields, got %d", op.Kind, want, len(fields))
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= ids {
		return Op{}, fmt.Errorf("id %q outside [0, %d)", fields[1], ids)
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return Op{}, fmt.Errorf("bad size %q", fields[2])
		}
		op.Size = size
	}
	return op, nil
}

// Write writes t in the format Parse reads.
func (t *Trace) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%d\n%d\n%d\n", t.SuggestedHeap, t.NumIDs, len(t.Ops), t.Weight)
	for _, op := range t.Ops {
		if op.Kind == OpFree {
			fmt.Fprintf(bw, "%c %d\n", op.Kind, op.ID)
			continue
		}
		fmt.Fprintf(bw, "%c %d %d\n", op.Kind, op.ID, op.Size)
	}
	return bw.Flush()
}

// Save writes t to path, replacing any existing file.
func (t *Trace) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("trace: create: %w", err)
	}
	if err := t.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("trace: write %s: %w", path, err)
	}
	return f.Close()
}
