package ustar

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/aurora-is-near/ustar/src/util"
)

// Writer appends entries to an archive file, one header block plus a
// block-padded data region per entry. Appends are not atomic: a failure
// mid-write leaves a truncated archive behind.
type Writer struct {
	opts Options
	log  logrus.FieldLogger
}

func NewWriter(opts Options) *Writer {
	return &Writer{opts: opts, log: opts.logger()}
}

// Create truncates or creates the archive at archivePath and packs rootPath
// into it. A directory root is expanded through opts.Walk, each directory
// entry written before the files inside it; a file root becomes a single
// entry. A missing rootPath is reported as a plain failure.
func (w *Writer) Create(archivePath, rootPath string) error {
	w.log.Infof("Creating archive %q", archivePath)
	fi, err := os.Stat(rootPath)
	if err != nil {
		return errors.Errorf("no such file or directory: %q", rootPath)
	}
	if err := util.TruncateFile(archivePath); err != nil {
		return errors.Wrapf(err, "create %q", archivePath)
	}
	if fi.IsDir() {
		if w.opts.Walk == nil {
			return errors.Errorf("no walker configured for directory %q", rootPath)
		}
		err = w.opts.Walk(rootPath, func(path string) error {
			return w.Add(archivePath, path)
		})
	} else {
		err = w.Add(archivePath, rootPath)
	}
	if err != nil {
		return err
	}
	if w.opts.Terminate {
		return w.Terminate(archivePath)
	}
	return nil
}

// Add classifies entryPath and appends its header and data region to the
// archive, creating the archive file when it does not exist yet. Entries
// with no ustar representation are skipped. Only regular files and links
// carry data; directories, devices and FIFOs are header-only.
func (w *Writer) Add(archivePath, entryPath string) error {
	w.log.Infof("Adding file %q", entryPath)
	flag, linkname, err := Classify(entryPath)
	if err != nil {
		return err
	}
	if flag == TypeUnknown {
		w.log.Warnf("Skipping %q: no ustar representation", entryPath)
		return nil
	}
	fi, err := os.Stat(entryPath)
	if err != nil {
		return errors.Errorf("no such file: %q", entryPath)
	}
	var owner Owner
	if w.opts.Owner != nil {
		owner = w.opts.Owner()
	}
	size := fi.Size()
	if flag == TypeDir {
		size = 0
	}
	rec, err := Encode(&Header{
		Name:     entryPath,
		Mode:     int64(fi.Mode().Perm()),
		UID:      owner.UID,
		GID:      owner.GID,
		Size:     size,
		Mtime:    fi.ModTime().Unix(),
		Typeflag: flag,
		Linkname: linkname,
		Uname:    owner.User,
		Gname:    owner.Group,
	})
	if err != nil {
		return err
	}
	out, err := util.AppendFile(archivePath)
	if err != nil {
		return errors.Wrapf(err, "open archive %q", archivePath)
	}
	defer func() { _ = out.Close() }()
	if _, err := out.Write(rec[:]); err != nil {
		return errors.Wrapf(err, "write header for %q", entryPath)
	}
	if !flag.hasData() || size == 0 {
		return nil
	}
	in, err := os.Open(entryPath)
	if err != nil {
		return errors.Wrapf(err, "open %q", entryPath)
	}
	defer func() { _ = in.Close() }()
	if _, err := NewChunkedCopier(in, size, w.opts.ChunkSize).WriteTo(out); err != nil {
		return errors.Wrapf(err, "pack %q", entryPath)
	}
	if pad := paddingSize(size); pad > 0 {
		if _, err := out.Write(zeroBlock[:pad]); err != nil {
			return errors.Wrapf(err, "pad %q", entryPath)
		}
	}
	return nil
}

// Terminate appends the two zero blocks that conventionally end a tape
// archive. Readers stop at the first zero-name header either way, so
// archives produced by Add alone stay readable without it.
func (w *Writer) Terminate(archivePath string) error {
	out, err := util.AppendFile(archivePath)
	if err != nil {
		return errors.Wrapf(err, "open archive %q", archivePath)
	}
	defer func() { _ = out.Close() }()
	for i := 0; i < 2; i++ {
		if _, err := out.Write(zeroBlock[:]); err != nil {
			return errors.Wrap(err, "write terminator")
		}
	}
	return nil
}
