package ustar

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Owner is the identity stamped into headers written by this process.
// Resolving it from the operating system is the caller's business; the
// codec only truncates the names to their field widths.
type Owner struct {
	User  string
	Group string
	UID   int64
	GID   int64
}

// WalkFunc supplies the traversal order when packing a directory: it must
// invoke fn with the root directory itself first and then every nested
// entry, each containing directory before the files inside it. The writer
// never recurses on its own.
type WalkFunc func(root string, fn func(path string) error) error

// Options configures a Writer or Reader. The zero value works; unset fields
// fall back to the defaults documented per field.
type Options struct {
	// ChunkSize bounds the data-copy buffer. 0 selects DefaultChunkSize.
	ChunkSize int

	// Owner resolves the identity recorded in new headers. nil leaves the
	// owner fields empty.
	Owner func() Owner

	// Walk lists directory trees for Create. Only required when Create is
	// called with a directory root.
	Walk WalkFunc

	// Terminate makes Create finish the archive with two zero blocks.
	Terminate bool

	// VerifyChecksum recomputes header checksums while scanning and logs a
	// warning on mismatch. Mismatches never abort the scan.
	VerifyChecksum bool

	// HumanSizes renders listing sizes in human readable units instead of
	// byte counts.
	HumanSizes bool

	// Logger receives progress and warning messages. nil discards them.
	Logger logrus.FieldLogger
}

func (o *Options) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
