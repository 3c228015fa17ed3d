// Package discover locates vendor-native session logs on disk so the
// CLI's browse and cache-rebuild commands can find sessions without the
// caller naming every file by hand. It is deliberately outside the
// format's core: the spec treats filesystem discovery as an external
// collaborator.
package discover

import (
	"os"
	"path/filepath"
	"strings"
)

// Vendor identifies which adapter should handle a discovered file.
type Vendor string

const (
	VendorClaude Vendor = "claude"
	VendorCodex  Vendor = "codex"
)

// File describes one discovered vendor log on disk.
type File struct {
	Path   string
	Vendor Vendor
	Mtime  int64
	Size   int64
}

// Roots names the filesystem roots to walk for each vendor.
type Roots struct {
	ClaudeRoot string
	CodexRoot  string
}

// Walk scans both configured roots and returns every recognizable
// vendor log file, grounded on the teacher's internal/scan/scanner.go
// walk-and-filter structure.
func Walk(roots Roots) ([]File, error) {
	var files []File

	if roots.ClaudeRoot != "" {
		found, err := walkClaude(roots.ClaudeRoot)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		files = append(files, found...)
	}
	if roots.CodexRoot != "" {
		found, err := walkCodex(roots.CodexRoot)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

func walkClaude(root string) ([]File, error) {
	var files []File
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if base == "subagents" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		base := filepath.Base(path)
		if strings.Contains(base, "sessions-index") || strings.HasPrefix(base, "agent-") {
			return nil
		}
		files = append(files, File{
			Path:   path,
			Vendor: VendorClaude,
			Mtime:  info.ModTime().Unix(),
			Size:   info.Size(),
		})
		return nil
	})
	return files, err
}

func walkCodex(root string) ([]File, error) {
	var files []File
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		files = append(files, File{
			Path:   path,
			Vendor: VendorCodex,
			Mtime:  info.ModTime().Unix(),
			Size:   info.Size(),
		})
		return nil
	})
	return files, err
}
