package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// acquireSource reads the submission. A directory is resolved to the
// exercise file inside it. The returned path is the file actually read.
func (a *Analyzer) acquireSource(path string) (string, []byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return path, nil, &FileAccessError{Path: path, Err: err}
	}

	resolved := path
	if info.IsDir() {
		resolved = filepath.Join(path, a.exerciseFile)
		info, err = os.Stat(resolved)
		if err != nil {
			return resolved, nil, &FileAccessError{Path: resolved, Err: err}
		}
		if info.IsDir() {
			return resolved, nil, &FileAccessError{Path: resolved, Err: fmt.Errorf("is a directory")}
		}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return resolved, nil, &FileAccessError{Path: resolved, Err: err}
	}
	if !utf8.Valid(data) {
		return resolved, nil, &FileAccessError{Path: resolved, Err: errNotText}
	}
	return resolved, data, nil
}
