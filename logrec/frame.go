package logrec

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/pkg/errors"
)

var be = binary.BigEndian

// HeaderSize is the size of the fixed frame preceding every record body.
const HeaderSize = 4 + 4 + 2 + 2 + 4

var headerOffsets = struct {
	Len      uint8
	Checksum uint8
	Flags    uint8
	MemLen   uint8
}{
	Len:      0,
	Checksum: 4,
	Flags:    8,
	MemLen:   12,
}

var ErrChecksum = errors.New("record checksum mismatch")

// Frame is the fixed header of a log record. Len is the record length
// including header and zero padding; MemLen excludes the padding.
type Frame struct {
	Len      uint32
	Checksum uint32
	Flags    uint16
	MemLen   uint32
}

func (f *Frame) Read(b []byte) {
	f.Len = be.Uint32(b[headerOffsets.Len:])
	f.Checksum = be.Uint32(b[headerOffsets.Checksum:])
	f.Flags = be.Uint16(b[headerOffsets.Flags:])
	f.MemLen = be.Uint32(b[headerOffsets.MemLen:])
}

func (f *Frame) Write(b []byte) {
	be.PutUint32(b[headerOffsets.Len:], f.Len)
	be.PutUint32(b[headerOffsets.Checksum:], f.Checksum)
	be.PutUint16(b[headerOffsets.Flags:], f.Flags)
	b[headerOffsets.Flags+2] = 0
	b[headerOffsets.Flags+3] = 0
	be.PutUint32(b[headerOffsets.MemLen:], f.MemLen)
}

// PeekLen returns the length stored in the frame at the start of b.
func PeekLen(b []byte) (uint32, error) {
	if len(b) < HeaderSize {
		return 0, errors.Wrap(ErrShortBuffer, "record frame")
	}
	return be.Uint32(b[headerOffsets.Len:]), nil
}

// Checksum computes the CRC32 of a whole record, treating its checksum field
// as zero.
func Checksum(rec []byte) uint32 {
	var zero [4]byte
	sum := crc32.ChecksumIEEE(rec[:headerOffsets.Checksum])
	sum = crc32.Update(sum, crc32.IEEETable, zero[:])
	return crc32.Update(sum, crc32.IEEETable, rec[headerOffsets.Checksum+4:])
}

// VerifyFrame validates the frame of a complete record.
func VerifyFrame(rec []byte) (Frame, error) {
	var f Frame
	if len(rec) < HeaderSize {
		return f, errors.Wrap(ErrShortBuffer, "record frame")
	}
	f.Read(rec)
	switch {
	case int(f.Len) != len(rec):
		return f, errors.Errorf("frame declares %d bytes, record holds %d", f.Len, len(rec))
	case f.MemLen < HeaderSize || f.MemLen > f.Len:
		return f, errors.Errorf("frame declares invalid unpadded length %d", f.MemLen)
	case Checksum(rec) != f.Checksum:
		return f, ErrChecksum
	}
	return f, nil
}

// BuildRecord frames body into a complete record, zero-padding it to a
// multiple of alignment when alignment is greater than zero.
func BuildRecord(body []byte, alignment int) []byte {
	memLen := HeaderSize + len(body)
	total := memLen
	if alignment > 0 && total%alignment != 0 {
		total += alignment - total%alignment
	}
	rec := make([]byte, total)
	copy(rec[HeaderSize:], body)
	f := Frame{Len: uint32(total), MemLen: uint32(memLen)}
	f.Write(rec)
	f.Checksum = Checksum(rec)
	be.PutUint32(rec[headerOffsets.Checksum:], f.Checksum)
	return rec
}

// UnpackRecordType reads the record type from a framed record, returning it
// along with the position immediately after it.
func UnpackRecordType(rec []byte) (RecordType, int, error) {
	if len(rec) < HeaderSize {
		return 0, 0, errors.Wrap(ErrShortBuffer, "record frame")
	}
	t, n, err := UnpackUint32(rec[HeaderSize:])
	if err != nil {
		return 0, 0, errors.Wrap(err, "record type")
	}
	return RecordType(t), HeaderSize + n, nil
}

// AppendRecordBody appends a record body of a given type to dst. For commit
// records, use AppendCommitBody.
func AppendRecordBody(dst []byte, t RecordType, payload []byte) []byte {
	dst = AppendUint(dst, uint64(t))
	return append(dst, payload...)
}

// AppendCommitBody appends a commit record body holding txnID followed by
// the provided, already packed, operations.
func AppendCommitBody(dst []byte, txnID uint64, ops ...[]byte) []byte {
	dst = AppendUint(dst, uint64(RecordCommit))
	dst = AppendUint(dst, txnID)
	for _, op := range ops {
		dst = append(dst, op...)
	}
	return dst
}
