package memmap

import (
	"fmt"
	"io"
	"strings"
)

// String returns the single-line diagnostic listing of the visible entries,
// in stored order.
func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, d := range m.All() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.String())
	}
	sb.WriteByte(']')

	return sb.String()
}

// Format implements fmt.Formatter. %v and %s print the single-line listing,
// %+v prints the multi-line listing written by WriteTo.
func (m *Map) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v':
		if f.Flag('+') {
			_, _ = m.WriteTo(f)
			return
		}
		_, _ = io.WriteString(f, m.String())
	case 's':
		_, _ = io.WriteString(f, m.String())
	default:
		fmt.Fprintf(f, "%%!%c(*memmap.Map)", verb)
	}
}

// WriteTo writes the multi-line diagnostic listing: a header line, then one
// indexed line per visible entry. Slots past the count are never printed.
func (m *Map) WriteTo(w io.Writer) (int64, error) {
	var total int64

	n, err := fmt.Fprintf(w, "memory map: %d/%d regions\n", m.visible(), Capacity)
	total += int64(n)
	if err != nil {
		return total, err
	}

	for i, d := range m.All() {
		n, err = fmt.Fprintf(w, "%3d: %s\n", i, d)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}

	return total, nil
}
