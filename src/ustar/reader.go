package ustar

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Reader sequentially scans an archive, decoding one header block at a time
// and either printing entries or materializing them on disk. There is no
// index; entries are only ever discovered by the linear scan.
type Reader struct {
	opts Options
	log  logrus.FieldLogger
}

func NewReader(opts Options) *Reader {
	return &Reader{opts: opts, log: opts.logger()}
}

// scan drives the shared header loop: decode the next header, hand it to
// fn, then seek past whatever part of the data+padding region fn did not
// consume. fn reports the data bytes it read off the archive. The scan
// stops cleanly at a zero-name header or at end-of-file on a block
// boundary; a partial trailing block is corruption.
func (r *Reader) scan(archivePath string, fn func(hdr *Header, in *os.File) (int64, error)) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Errorf("no such file: %q", archivePath)
	}
	defer func() { _ = f.Close() }()
	var rec Block
	for {
		if _, err := io.ReadFull(f, rec[:]); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrap(err, "read header")
		}
		hdr, err := Decode(&rec)
		if err == ErrEndOfArchive {
			return nil
		}
		if err != nil {
			return err
		}
		if r.opts.VerifyChecksum && !hdr.ChecksumOK {
			r.log.Warnf("Checksum mismatch for %q", hdr.Name)
		}
		consumed, err := fn(hdr, f)
		if err != nil {
			return err
		}
		if skip := hdr.Size - consumed + paddingSize(hdr.Size); skip > 0 {
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return errors.Wrap(err, "skip entry data")
			}
		}
	}
}

// List prints one line per entry to out: permission string, numeric
// uid/gid, size, timestamp, name, and an arrow-annotated link target when
// the header carries one. Entry data is skipped without buffering.
func (r *Reader) List(archivePath string, out io.Writer) error {
	return r.scan(archivePath, func(hdr *Header, _ *os.File) (int64, error) {
		size := strconv.FormatInt(hdr.Size, 10)
		if r.opts.HumanSizes {
			size = units.HumanSize(float64(hdr.Size))
		}
		link := ""
		if l := strings.TrimSpace(hdr.Linkname); l != "" {
			link = " -> " + l
		}
		_, err := fmt.Fprintf(out, "%-10s %d/%d %12s %s %s%s\n",
			PermissionBits(hdr.Typeflag, hdr.Mode),
			hdr.UID, hdr.GID, size,
			time.Unix(hdr.Mtime, 0).Format("2006-01-02 15:04:05"),
			hdr.Name, link)
		return 0, err
	})
}

// Extract materializes the archive's entries under destDir, creating the
// directory when absent. Regular files are streamed in chunks and end up
// with the header's permission bits; directories are created idempotently;
// all other entry types are decoded but produce no filesystem object.
func (r *Reader) Extract(archivePath, destDir string) error {
	r.log.Infof("Extracting files from archive %q", archivePath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrapf(err, "create %q", destDir)
	}
	return r.scan(archivePath, func(hdr *Header, in *os.File) (int64, error) {
		outPath := filepath.Join(destDir, hdr.Name)
		switch hdr.Typeflag {
		case TypeRegular:
			r.log.Infof("Extracting file %q", outPath)
			return r.extractFile(outPath, hdr, in)
		case TypeDir:
			r.log.Infof("Extracting file %q", outPath)
			// keep extracted directories enterable so their files
			// can follow; MkdirAll is a no-op when the directory
			// already exists
			if err := os.MkdirAll(outPath, os.FileMode(hdr.Mode)|0700); err != nil {
				return 0, errors.Wrapf(err, "create %q", outPath)
			}
		}
		return 0, nil
	})
}

func (r *Reader) extractFile(outPath string, hdr *Header, in *os.File) (int64, error) {
	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode))
	if err != nil {
		return 0, errors.Wrapf(err, "create %q", outPath)
	}
	n, err := NewChunkedCopier(in, hdr.Size, r.opts.ChunkSize).WriteTo(out)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return n, errors.Wrapf(err, "extract %q", outPath)
	}
	// the create mode above is filtered by the umask; restore the recorded
	// bits explicitly
	if err := os.Chmod(outPath, os.FileMode(hdr.Mode)); err != nil {
		return n, err
	}
	return n, nil
}
