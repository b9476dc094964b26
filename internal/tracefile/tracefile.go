// Package tracefile loads a raw trace file into memory.
//
// Plain files are mapped read-only. Files starting with the xz stream magic
// are decompressed into a heap buffer.
package tracefile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ulikunitz/xz"
	"golang.org/x/sys/unix"
)

// ErrEmpty is returned for files without any trace data.
var ErrEmpty = errors.New("file empty")

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// File is the contents of a trace file.
type File struct {
	Path string

	data   []byte
	mapped bool
}

// Open reads the trace file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, cause(err))
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to fstat %s: %w", path, cause(err))
	}
	if !fi.Mode().IsRegular() {
		return readAll(path, f)
	}
	if fi.Size() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	if int64(int(fi.Size())) != fi.Size() {
		return nil, fmt.Errorf("%s: file too large", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		// Some filesystems do not support mapping.
		return readAll(path, f)
	}
	if bytes.HasPrefix(data, xzMagic) {
		defer unix.Munmap(data)
		return decompress(path, bytes.NewReader(data))
	}
	return &File{Path: path, data: data, mapped: true}, nil
}

// readAll loads files that cannot be mapped, such as pipes.
func readAll(path string, r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(xzMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: failed to read file: %w", path, err)
	}
	if bytes.Equal(head, xzMagic) {
		return decompress(path, br)
	}

	data, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read file: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return &File{Path: path, data: data}, nil
}

func decompress(path string, r io.Reader) (*File, error) {
	zr, err := xz.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: xz: %w", path, err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%s: xz: %w", path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return &File{Path: path, data: data}, nil
}

// cause strips the operation and path from os errors; callers name the
// path themselves.
func cause(err error) error {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}

// Bytes returns the trace data. The slice is valid until Close.
func (f *File) Bytes() []byte {
	return f.data
}

// Close releases the trace data.
func (f *File) Close() error {
	data := f.data
	f.data = nil
	if f.mapped && data != nil {
		f.mapped = false
		if err := unix.Munmap(data); err != nil {
			return fmt.Errorf("unmap trace: %w", err)
		}
	}
	return nil
}
