package ustar

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"
)

func TestChunkedCopierExactBudget(t *testing.T) {
	data := make([]byte, 20000)
	if _, err := io.ReadFull(rand.Reader, data); err != nil {
		t.Fatalf("rand: %s", err)
	}
	c := NewChunkedCopier(bytes.NewReader(data), int64(len(data)), 8192)
	var got []byte
	wantSizes := []int{8192, 8192, 3616}
	for i := 0; ; i++ {
		chunk, err := c.Next()
		if err == io.EOF {
			if i != len(wantSizes) {
				t.Fatalf("terminated after %d chunks, want %d", i, len(wantSizes))
			}
			break
		}
		if err != nil {
			t.Fatalf("Next: %s", err)
		}
		if len(chunk) != wantSizes[i] {
			t.Errorf("chunk %d: %d bytes != %d", i, len(chunk), wantSizes[i])
		}
		got = append(got, chunk...)
	}
	if !bytes.Equal(got, data) {
		t.Error("reassembled data differs from source")
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining after drain: %d != 0", c.Remaining())
	}
	// terminal state is sticky
	if _, err := c.Next(); err != io.EOF {
		t.Errorf("Next after drain: %v != io.EOF", err)
	}
}

func TestChunkedCopierNeverOverreads(t *testing.T) {
	src := bytes.NewReader(make([]byte, 100))
	c := NewChunkedCopier(src, 60, 64)
	var sink bytes.Buffer
	n, err := c.WriteTo(&sink)
	if err != nil {
		t.Fatalf("WriteTo: %s", err)
	}
	if n != 60 || sink.Len() != 60 {
		t.Errorf("copied %d/%d bytes, want 60", n, sink.Len())
	}
	if src.Len() != 40 {
		t.Errorf("source advanced past total: %d bytes left, want 40", src.Len())
	}
}

func TestChunkedCopierShortSource(t *testing.T) {
	c := NewChunkedCopier(bytes.NewReader(make([]byte, 50)), 100, 64)
	if _, err := c.WriteTo(io.Discard); err == nil {
		t.Error("expected error from short source")
	}
}

func TestChunkedCopierDefaultChunkSize(t *testing.T) {
	c := NewChunkedCopier(bytes.NewReader(make([]byte, DefaultChunkSize+1)), DefaultChunkSize+1, 0)
	chunk, err := c.Next()
	if err != nil {
		t.Fatalf("Next: %s", err)
	}
	if len(chunk) != DefaultChunkSize {
		t.Errorf("default chunk: %d bytes != %d", len(chunk), DefaultChunkSize)
	}
}

func TestChunkedCopierZeroTotal(t *testing.T) {
	c := NewChunkedCopier(bytes.NewReader(nil), 0, 0)
	if _, err := c.Next(); err != io.EOF {
		t.Errorf("zero budget: %v != io.EOF", err)
	}
}
