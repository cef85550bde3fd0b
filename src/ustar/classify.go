package ustar

import (
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Classify maps the filesystem object at path to its archive entry type
// and, for links, the resolved absolute target recorded in the header.
//
// A symlink is reported as a hard link when its resolved target carries the
// same device and inode as the link's own lstat. Genuine hard links never
// set the symlink mode bit, so this branch cannot fire for them; the check
// is kept for parity with the format's hardlink tag.
func Classify(path string) (TypeFlag, string, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return TypeUnknown, "", errors.Wrapf(err, "lstat %q", path)
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		return TypeRegular, "", nil
	case unix.S_IFLNK:
		target, err := filepath.EvalSymlinks(path)
		if err != nil {
			return TypeUnknown, "", errors.Wrapf(err, "resolve link %q", path)
		}
		if target, err = filepath.Abs(target); err != nil {
			return TypeUnknown, "", err
		}
		var tst unix.Stat_t
		if err := unix.Stat(target, &tst); err != nil {
			return TypeUnknown, "", errors.Wrapf(err, "stat %q", target)
		}
		if tst.Dev == st.Dev && tst.Ino == st.Ino {
			return TypeHardlink, target, nil
		}
		return TypeSymlink, target, nil
	case unix.S_IFCHR:
		return TypeChar, "", nil
	case unix.S_IFBLK:
		return TypeBlock, "", nil
	case unix.S_IFDIR:
		return TypeDir, "", nil
	case unix.S_IFIFO:
		return TypeFIFO, "", nil
	}
	return TypeUnknown, "", nil
}
