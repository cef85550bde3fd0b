package ustar

import (
	"bytes"
	"crypto/rand"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/aurora-is-near/ustar/src/util"
	"github.com/aurora-is-near/ustar/src/walk"
)

func testOptions() Options {
	return Options{
		Owner: func() Owner {
			return Owner{User: "tester", Group: "testers", UID: 1000, GID: 1000}
		},
		Walk: walk.List,
	}
}

// chdir moves the test into dir so entry names stay relative, the way the
// tool is used. Restored on cleanup; these tests must not run in parallel.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	assert.NilError(t, err)
	assert.NilError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func writeRandomFile(t *testing.T, name string, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	_, err := io.ReadFull(rand.Reader, data)
	assert.NilError(t, err)
	assert.NilError(t, os.WriteFile(name, data, 0644))
	return data
}

// readArchive decodes every header in the archive, in order.
func readArchive(t *testing.T, name string) []*Header {
	t.Helper()
	f, err := os.Open(name)
	assert.NilError(t, err)
	defer func() { _ = f.Close() }()
	var headers []*Header
	var rec Block
	for {
		if _, err := io.ReadFull(f, rec[:]); err != nil {
			assert.Equal(t, err, io.EOF)
			return headers
		}
		hdr, err := Decode(&rec)
		if err == ErrEndOfArchive {
			return headers
		}
		assert.NilError(t, err)
		headers = append(headers, hdr)
		_, err = f.Seek(hdr.Size+paddingSize(hdr.Size), io.SeekCurrent)
		assert.NilError(t, err)
	}
}

func TestAddPaddingInvariant(t *testing.T) {
	chdir(t, t.TempDir())
	w := NewWriter(testOptions())
	for _, size := range []int{1, 13, 511, 512, 513, 8197} {
		data := writeRandomFile(t, "data.bin", size)
		assert.NilError(t, util.TruncateFile("test.tar"))
		assert.NilError(t, w.Add("test.tar", "data.bin"))

		raw, err := os.ReadFile("test.tar")
		assert.NilError(t, err)
		want := BlockSize + size + int(paddingSize(int64(size)))
		if len(raw) != want {
			t.Fatalf("size %d: archive is %d bytes, want %d", size, len(raw), want)
		}
		if !bytes.Equal(raw[BlockSize:BlockSize+size], data) {
			t.Errorf("size %d: packed data differs from source", size)
		}
		if !isZero(raw[BlockSize+size:]) {
			t.Errorf("size %d: trailing padding is not zero", size)
		}
	}
}

func TestAddHeaderFields(t *testing.T) {
	chdir(t, t.TempDir())
	content := []byte("123\r\naaa\r\nzzz")
	assert.NilError(t, os.WriteFile("file.txt", content, 0644))
	assert.NilError(t, util.TruncateFile("test.tar"))
	assert.NilError(t, NewWriter(testOptions()).Add("test.tar", "file.txt"))

	headers := readArchive(t, "test.tar")
	assert.Equal(t, len(headers), 1)
	hdr := headers[0]
	assert.Equal(t, hdr.Name, "file.txt")
	assert.Equal(t, hdr.Size, int64(13))
	assert.Equal(t, hdr.Typeflag, TypeRegular)
	assert.Equal(t, hdr.Mode, int64(0o644))
	assert.Equal(t, hdr.Uname, "tester")
	assert.Equal(t, hdr.Gname, "testers")
	assert.Equal(t, hdr.UID, int64(1000))
	assert.Equal(t, hdr.GID, int64(1000))
	assert.Assert(t, hdr.ChecksumOK)
}

func TestAddSameFileThreeTimes(t *testing.T) {
	chdir(t, t.TempDir())
	data := writeRandomFile(t, "data.bin", 700)
	assert.NilError(t, util.TruncateFile("test.tar"))
	w := NewWriter(testOptions())
	for i := 0; i < 3; i++ {
		assert.NilError(t, w.Add("test.tar", "data.bin"))
	}

	headers := readArchive(t, "test.tar")
	assert.Equal(t, len(headers), 3)
	for _, hdr := range headers[1:] {
		assert.DeepEqual(t, hdr, headers[0])
	}
	raw, err := os.ReadFile("test.tar")
	assert.NilError(t, err)
	stride := BlockSize + 700 + int(paddingSize(700))
	assert.Equal(t, len(raw), 3*stride)
	for i := 0; i < 3; i++ {
		seg := raw[i*stride : (i+1)*stride]
		if !bytes.Equal(seg[BlockSize:BlockSize+700], data) {
			t.Errorf("copy %d: data differs from source", i)
		}
	}
}

func TestCreateDirectoryOrder(t *testing.T) {
	chdir(t, t.TempDir())
	assert.NilError(t, os.Mkdir("tree", 0755))
	writeRandomFile(t, "tree/leaf.txt", 42)
	w := NewWriter(testOptions())
	assert.NilError(t, w.Create("test.tar", "tree"))

	headers := readArchive(t, "test.tar")
	assert.Equal(t, len(headers), 2)
	assert.Equal(t, headers[0].Name, "tree")
	assert.Equal(t, headers[0].Typeflag, TypeDir)
	assert.Equal(t, headers[0].Size, int64(0))
	assert.Equal(t, headers[1].Name, "tree/leaf.txt")
	assert.Equal(t, headers[1].Typeflag, TypeRegular)
}

func TestCreateTruncatesExisting(t *testing.T) {
	chdir(t, t.TempDir())
	writeRandomFile(t, "data.bin", 10)
	assert.NilError(t, os.WriteFile("test.tar", bytes.Repeat([]byte{1}, 4096), 0640))
	assert.NilError(t, NewWriter(testOptions()).Create("test.tar", "data.bin"))
	headers := readArchive(t, "test.tar")
	assert.Equal(t, len(headers), 1)
	assert.Equal(t, headers[0].Name, "data.bin")
}

func TestCreateTerminator(t *testing.T) {
	chdir(t, t.TempDir())
	writeRandomFile(t, "data.bin", 100)
	opts := testOptions()
	opts.Terminate = true
	assert.NilError(t, NewWriter(opts).Create("test.tar", "data.bin"))

	raw, err := os.ReadFile("test.tar")
	assert.NilError(t, err)
	assert.Equal(t, len(raw), 2*BlockSize+2*BlockSize)
	assert.Assert(t, isZero(raw[len(raw)-2*BlockSize:]))
}

func TestCreateMissingRoot(t *testing.T) {
	chdir(t, t.TempDir())
	err := NewWriter(testOptions()).Create("test.tar", "missing")
	assert.Assert(t, err != nil)
	_, statErr := os.Stat("test.tar")
	assert.Assert(t, os.IsNotExist(statErr))
}

func TestAddMissingEntry(t *testing.T) {
	chdir(t, t.TempDir())
	assert.NilError(t, util.TruncateFile("test.tar"))
	err := NewWriter(testOptions()).Add("test.tar", "missing")
	assert.Assert(t, err != nil)
}

func TestAddSkipsUnsupported(t *testing.T) {
	chdir(t, t.TempDir())
	l, err := net.Listen("unix", "sock")
	assert.NilError(t, err)
	defer func() { _ = l.Close() }()
	assert.NilError(t, util.TruncateFile("test.tar"))
	assert.NilError(t, NewWriter(testOptions()).Add("test.tar", "sock"))
	assert.Equal(t, len(readArchive(t, "test.tar")), 0)
}

func TestAddSymlink(t *testing.T) {
	chdir(t, t.TempDir())
	assert.NilError(t, os.WriteFile("target.txt", []byte("hello"), 0600))
	assert.NilError(t, os.Symlink("target.txt", "link"))
	assert.NilError(t, util.TruncateFile("test.tar"))
	assert.NilError(t, NewWriter(testOptions()).Add("test.tar", "link"))

	headers := readArchive(t, "test.tar")
	assert.Equal(t, len(headers), 1)
	assert.Equal(t, headers[0].Typeflag, TypeSymlink)
	assert.Equal(t, headers[0].Size, int64(5))
	want, err := filepath.EvalSymlinks("link")
	assert.NilError(t, err)
	want, err = filepath.Abs(want)
	assert.NilError(t, err)
	assert.Equal(t, headers[0].Linkname, want)
}
