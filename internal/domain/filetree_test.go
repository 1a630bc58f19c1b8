package domain

import (
	"errors"
	"testing"
)

func TestFileTree_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tree    FileTree
		wantErr bool
	}{
		{"empty tree", FileTree{}, false},
		{"plain files", FileTree{"app.js": "x", "src/index.js": ""}, false},
		{"blank name", FileTree{"  ": "x"}, true},
		{"newline in name", FileTree{"a\nb.js": "x"}, true},
		{"delete char", FileTree{"a\x7f.js": "x"}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.tree.Validate()
			if tc.wantErr != (err != nil) {
				t.Fatalf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFileName) {
				t.Errorf("Expected ErrInvalidFileName, got %v", err)
			}
		})
	}
}

func TestFileTree_SizeAndClone(t *testing.T) {
	tree := FileTree{"a.js": "12345", "b": ""}
	if got := tree.Size(); got != 10 {
		t.Errorf("Size() = %d, expected 10", got)
	}

	clone := tree.Clone()
	clone["a.js"] = "changed"
	if tree["a.js"] != "12345" {
		t.Error("Clone shares storage with the original")
	}
	if len(FileTree(nil).Clone()) != 0 {
		t.Error("Clone of nil tree should be empty")
	}
}
