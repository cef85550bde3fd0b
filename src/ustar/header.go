package ustar

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Byte offsets and widths of the ustar header fields. The layout is fixed;
// encode and decode are driven entirely by this table.
const (
	offName     = 0
	lenName     = 100
	offMode     = 100
	lenMode     = 8
	offUID      = 108
	lenUID      = 8
	offGID      = 116
	lenGID      = 8
	offSize     = 124
	lenSize     = 12
	offMtime    = 136
	lenMtime    = 12
	offChksum   = 148
	lenChksum   = 8
	offType     = 156
	offLink     = 157
	lenLink     = 100
	offMagic    = 257
	lenMagic    = 6
	offVersion  = 263
	lenVersion  = 2
	offUname    = 265
	lenUname    = 32
	offGname    = 297
	lenGname    = 32
	offDevMajor = 329
	offDevMinor = 337
	lenDev      = 8
)

const (
	headerMagic   = "ustar\x00"
	headerVersion = "00"

	// Device numbers are not recorded; the fields carry a fixed
	// placeholder.
	devPlaceholder = "0000000\x00"

	// Names and link targets beyond this length truncate silently; the
	// prefix long-name extension is not implemented.
	maxNameLen = 99
)

// ErrEndOfArchive marks a header block whose name field is entirely zero.
// Writers do not always emit terminator blocks, so readers also accept a
// plain end-of-file at a block boundary.
var ErrEndOfArchive = errors.New("end of archive")

// OverflowError reports a numeric header value whose octal text does not
// fit its field.
type OverflowError struct {
	Field string
	Value int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("ustar: %s value %d overflows header field", e.Field, e.Value)
}

// FormatError reports a header field with non-octal content.
type FormatError struct {
	Field string
	Text  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ustar: %s field %q is not octal", e.Field, e.Text)
}

// Header is the decoded form of one 512-byte ustar header record.
type Header struct {
	Name     string
	Mode     int64
	UID      int64
	GID      int64
	Size     int64
	Mtime    int64 // seconds since epoch
	Checksum int64
	Typeflag TypeFlag
	Linkname string
	Uname    string
	Gname    string

	// ChecksumOK reports whether the stored checksum matched the value
	// recomputed during Decode. Informational only: a mismatch never fails
	// the decode.
	ChecksumOK bool
}

// Checksum sums the unsigned byte values of a full header block. The sum of
// an all-zero block is 0; with the checksum field set to eight spaces and
// the rest zero it is 256.
func Checksum(b *Block) int64 {
	var sum int64
	for _, c := range b {
		sum += int64(c)
	}
	return sum
}

// Encode serializes h into a 512-byte header record. The checksum is
// computed over the record with its checksum field blanked to eight spaces
// and then stored in textual octal form.
func Encode(h *Header) (*Block, error) {
	b := new(Block)
	putText(b[offName:offName+lenName], h.Name, maxNameLen)
	if err := putOctal(b[offMode:offMode+lenMode], h.Mode, "mode"); err != nil {
		return nil, err
	}
	if err := putOctal(b[offUID:offUID+lenUID], h.UID, "uid"); err != nil {
		return nil, err
	}
	if err := putOctal(b[offGID:offGID+lenGID], h.GID, "gid"); err != nil {
		return nil, err
	}
	size := h.Size
	if h.Typeflag == TypeDir {
		size = 0
	}
	if err := putOctal(b[offSize:offSize+lenSize], size, "size"); err != nil {
		return nil, err
	}
	if err := putOctal(b[offMtime:offMtime+lenMtime], h.Mtime, "mtime"); err != nil {
		return nil, err
	}
	tag, ok := h.Typeflag.tag()
	if !ok {
		return nil, fmt.Errorf("ustar: %s entries cannot be encoded", h.Typeflag)
	}
	b[offType] = tag
	putText(b[offLink:offLink+lenLink], h.Linkname, maxNameLen)
	copy(b[offMagic:offMagic+lenMagic], headerMagic)
	copy(b[offVersion:offVersion+lenVersion], headerVersion)
	putText(b[offUname:offUname+lenUname], h.Uname, lenUname)
	putText(b[offGname:offGname+lenGname], h.Gname, lenGname)
	copy(b[offDevMajor:offDevMajor+lenDev], devPlaceholder)
	copy(b[offDevMinor:offDevMinor+lenDev], devPlaceholder)
	// prefix and pad stay zero

	copy(b[offChksum:offChksum+lenChksum], "        ")
	sum := Checksum(b)
	copy(b[offChksum:offChksum+lenChksum], fmt.Sprintf("%06o\x00 ", sum))
	return b, nil
}

// Decode parses a header record. It returns ErrEndOfArchive when the name
// field is entirely zero. The stored checksum is recomputed and compared but
// a mismatch only clears ChecksumOK; it does not fail the decode.
func Decode(b *Block) (*Header, error) {
	if isZero(b[offName : offName+lenName]) {
		return nil, ErrEndOfArchive
	}
	h := &Header{
		Name:     parseText(b[offName : offName+lenName]),
		Typeflag: typeFlagOf(b[offType]),
		Linkname: parseText(b[offLink : offLink+lenLink]),
		Uname:    parseText(b[offUname : offUname+lenUname]),
		Gname:    parseText(b[offGname : offGname+lenGname]),
	}
	var err error
	if h.Mode, err = parseOctal(b[offMode:offMode+lenMode], "mode"); err != nil {
		return nil, err
	}
	if h.UID, err = parseOctal(b[offUID:offUID+lenUID], "uid"); err != nil {
		return nil, err
	}
	if h.GID, err = parseOctal(b[offGID:offGID+lenGID], "gid"); err != nil {
		return nil, err
	}
	if h.Size, err = parseOctal(b[offSize:offSize+lenSize], "size"); err != nil {
		return nil, err
	}
	if h.Mtime, err = parseOctal(b[offMtime:offMtime+lenMtime], "mtime"); err != nil {
		return nil, err
	}
	if h.Checksum, err = parseOctal(b[offChksum:offChksum+lenChksum], "checksum"); err != nil {
		return nil, err
	}
	scratch := *b
	copy(scratch[offChksum:offChksum+lenChksum], "        ")
	h.ChecksumOK = Checksum(&scratch) == h.Checksum
	return h, nil
}

// putText copies s into dst, truncated to max bytes. dst is zeroed already,
// so shorter values end up NUL-padded.
func putText(dst []byte, s string, max int) {
	if max > len(dst) {
		max = len(dst)
	}
	if len(s) > max {
		s = s[:max]
	}
	copy(dst, s)
}

// putOctal writes v as zero-padded octal ASCII with a terminating NUL,
// filling the field completely. Values whose octal text exceeds the field
// width are rejected rather than truncated.
func putOctal(dst []byte, v int64, field string) error {
	if v < 0 {
		return &OverflowError{Field: field, Value: v}
	}
	s := strconv.FormatInt(v, 8)
	width := len(dst) - 1
	if len(s) > width {
		return &OverflowError{Field: field, Value: v}
	}
	for i := 0; i < width-len(s); i++ {
		dst[i] = '0'
	}
	copy(dst[width-len(s):], s)
	return nil
}

func parseOctal(src []byte, field string) (int64, error) {
	text := bytes.Trim(src, " \x00")
	if len(text) == 0 {
		return 0, nil
	}
	for _, c := range text {
		if c < '0' || c > '7' {
			return 0, &FormatError{Field: field, Text: string(text)}
		}
	}
	v, err := strconv.ParseInt(string(text), 8, 64)
	if err != nil {
		return 0, &FormatError{Field: field, Text: string(text)}
	}
	return v, nil
}

func parseText(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		src = src[:i]
	}
	return string(src)
}

func isZero(src []byte) bool {
	for _, c := range src {
		if c != 0 {
			return false
		}
	}
	return true
}
