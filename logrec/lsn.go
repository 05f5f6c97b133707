package logrec

import "fmt"

// LSN (log sequence number) addresses a byte position in the log: a file
// number and an offset within that file. The zero LSN sorts before every
// record and is interpreted by scanners as "start of log".
type LSN struct {
	File   uint32
	Offset uint64
}

// ZeroLSN is the invalid LSN, positioned before the first record.
var ZeroLSN = LSN{}

func (l LSN) IsZero() bool { return l.File == 0 && l.Offset == 0 }

// Compare orders LSNs by file, then offset. Returns -1, 0 or 1.
func (l LSN) Compare(o LSN) int {
	switch {
	case l.File < o.File:
		return -1
	case l.File > o.File:
		return 1
	case l.Offset < o.Offset:
		return -1
	case l.Offset > o.Offset:
		return 1
	}
	return 0
}

// Advance returns the LSN n bytes further into the same file.
func (l LSN) Advance(n int) LSN {
	return LSN{File: l.File, Offset: l.Offset + uint64(n)}
}

func (l LSN) String() string {
	return fmt.Sprintf("%d/%d", l.File, l.Offset)
}
