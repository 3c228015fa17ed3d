package main

import (
	"bytes"
	"io"
	"os"

	"github.com/asbjornb/spool/internal/format"
)

// readInput reads path, or stdin when path is "-" or empty.
func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, or stdout when path is "-" or empty.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// readSpoolFile loads a .spool session from path (or stdin).
func readSpoolFile(path string) (*format.Session, error) {
	raw, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return format.Read(bytes.NewReader(raw), format.ReadOptions{Strict: false})
}

// writeSpoolFile serializes a session to path (or stdout).
func writeSpoolFile(path string, s *format.Session) error {
	var buf bytes.Buffer
	if err := format.Write(&buf, s); err != nil {
		return err
	}
	return writeOutput(path, buf.Bytes())
}
