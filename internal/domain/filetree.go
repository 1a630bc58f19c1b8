package domain

import (
	"errors"
	"strings"
)

var ErrInvalidFileName = errors.New("file name must be non-empty and must not contain control characters")

// FileTree maps a file name to its content. Updates replace the whole tree.
type FileTree map[string]string

// Clone returns a copy that shares nothing with t
func (t FileTree) Clone() FileTree {
	out := make(FileTree, len(t))
	for name, content := range t {
		out[name] = content
	}
	return out
}

// Size returns the number of bytes held by names and contents
func (t FileTree) Size() int {
	n := 0
	for name, content := range t {
		n += len(name) + len(content)
	}
	return n
}

// Validate checks every file name
func (t FileTree) Validate() error {
	for name := range t {
		if strings.TrimSpace(name) == "" {
			return ErrInvalidFileName
		}
		if strings.ContainsFunc(name, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
			return ErrInvalidFileName
		}
	}
	return nil
}
