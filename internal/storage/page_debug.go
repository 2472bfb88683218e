package storage

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"unicode"
)

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Fprintf(format string, a ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, a...)
}

// ASCII preview: printable -> itself, else '.'
func asciiPreview(b []byte) string {
	var buf bytes.Buffer
	for _, c := range b {
		r := rune(c)
		if unicode.IsPrint(r) && r != '\n' && r != '\r' && r != '\t' {
			buf.WriteRune(r)
		} else {
			buf.WriteByte('.')
		}
	}
	return buf.String()
}

// Debug prints the header, the slot directory, and record previews.
func (p *Page) Debug(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.Fprintf("=== Page Debug ===\n")
	ew.Fprintf("version=%d numRecords=%d freeSpacePtr=%d\n",
		p.Version(), p.NumRecords(), p.freeSpacePtr())
	ew.Fprintf("pageSize=%d freeSpace=%d\n", PageSize, p.FreeSpace())

	ew.Fprintf("\n-- Slots --\n")
	if p.NumRecords() == 0 {
		ew.Fprintf("(none)\n")
	}

	const maxPreview = 32
	for i := 0; i < int(p.NumRecords()); i++ {
		if ew.err != nil {
			break
		}
		s, err := p.Slot(i)
		if err != nil {
			ew.Fprintf("[%d] <error: %v>\n", i, err)
			continue
		}
		data, err := p.Record(s)
		if err != nil {
			ew.Fprintf("[%d] off=%d len=%d (read) %v\n", i, s.Offset, s.Length, err)
			continue
		}
		preview := data
		if len(preview) > maxPreview {
			preview = preview[:maxPreview]
		}
		ew.Fprintf("[%d] off=%d len=%d preview(hex)=%s\n",
			i, s.Offset, s.Length, hex.EncodeToString(preview))
		ew.Fprintf("     preview(ascii)=\"%s\"\n", asciiPreview(preview))
	}

	ew.Fprintf("\n-- FreeSpace --\nrange: [%d .. %d) size=%d bytes\n",
		slotOff(int(p.NumRecords())), p.freeSpacePtr(), p.FreeSpace())

	ew.Fprintf("=== End Page Debug ===\n")
	return ew.err
}

func (p *Page) DebugString() string {
	var b bytes.Buffer
	if err := p.Debug(&b); err != nil {
		// best-effort: surface the error in the output so callers see it
		_, _ = b.WriteString("\n<debug write error: " + err.Error() + ">\n")
	}
	return b.String()
}
