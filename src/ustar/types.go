// Package ustar implements the POSIX 1003.1-1988 (ustar) tape-archive
// format: fixed 512-byte header records followed by block-padded entry data,
// produced and consumed strictly sequentially.
package ustar

const (
	// BlockSize is the tar block granularity. Every header occupies exactly
	// one block and entry data is zero-padded up to a block boundary.
	BlockSize = 512

	// DefaultChunkSize bounds the buffer used when streaming entry data.
	DefaultChunkSize = 8 * 1024
)

// Block is one 512-byte archive block.
type Block [BlockSize]byte

var zeroBlock Block

// TypeFlag enumerates the entry types an archive can carry. TypeUnknown
// covers filesystem objects (sockets, ...) that have no ustar
// representation; the writer skips them.
type TypeFlag int

const (
	TypeUnknown TypeFlag = iota
	TypeRegular
	TypeHardlink
	TypeSymlink
	TypeChar
	TypeBlock
	TypeDir
	TypeFIFO
)

// Wire tags per POSIX 1003.1-1988. NUL is the pre-POSIX alias for '0'.
const (
	tagRegular      = '0'
	tagRegularAlias = 0x00
	tagHardlink     = '1'
	tagSymlink      = '2'
	tagChar         = '3'
	tagBlock        = '4'
	tagDir          = '5'
	tagFIFO         = '6'
)

func (t TypeFlag) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeHardlink:
		return "hardlink"
	case TypeSymlink:
		return "symlink"
	case TypeChar:
		return "char-device"
	case TypeBlock:
		return "block-device"
	case TypeDir:
		return "directory"
	case TypeFIFO:
		return "fifo"
	}
	return "unknown"
}

func (t TypeFlag) tag() (byte, bool) {
	switch t {
	case TypeRegular:
		return tagRegular, true
	case TypeHardlink:
		return tagHardlink, true
	case TypeSymlink:
		return tagSymlink, true
	case TypeChar:
		return tagChar, true
	case TypeBlock:
		return tagBlock, true
	case TypeDir:
		return tagDir, true
	case TypeFIFO:
		return tagFIFO, true
	}
	return 0, false
}

func typeFlagOf(tag byte) TypeFlag {
	switch tag {
	case tagRegular, tagRegularAlias:
		return TypeRegular
	case tagHardlink:
		return TypeHardlink
	case tagSymlink:
		return TypeSymlink
	case tagChar:
		return TypeChar
	case tagBlock:
		return TypeBlock
	case tagDir:
		return TypeDir
	case tagFIFO:
		return TypeFIFO
	}
	return TypeUnknown
}

// hasData reports whether entries of this type carry a data region after
// the header.
func (t TypeFlag) hasData() bool {
	switch t {
	case TypeRegular, TypeHardlink, TypeSymlink:
		return true
	}
	return false
}

func (t TypeFlag) listRune() byte {
	switch t {
	case TypeRegular:
		return '-'
	case TypeHardlink:
		return 'h'
	case TypeSymlink:
		return 'l'
	case TypeChar:
		return 'c'
	case TypeBlock:
		return 'b'
	case TypeDir:
		return 'd'
	case TypeFIFO:
		return 'p'
	}
	return '?'
}

// PermissionBits renders the ls-style type and permission string for an
// entry, e.g. a directory with mode 0777 becomes "drwxrwxrwx".
func PermissionBits(t TypeFlag, mode int64) string {
	b := make([]byte, 0, 10)
	b = append(b, t.listRune())
	for shift := 6; shift >= 0; shift -= 3 {
		v := mode >> uint(shift)
		if v&4 != 0 {
			b = append(b, 'r')
		} else {
			b = append(b, '-')
		}
		if v&2 != 0 {
			b = append(b, 'w')
		} else {
			b = append(b, '-')
		}
		if v&1 != 0 {
			b = append(b, 'x')
		} else {
			b = append(b, '-')
		}
	}
	return string(b)
}

func paddingSize(size int64) int64 {
	r := size % BlockSize
	if r == 0 {
		return 0
	}
	return BlockSize - r
}
