// Package view opens a session file in the user's $EDITOR, adapted
// from the teacher's internal/open/open.go: same editor-specific
// line-jump flag handling, same $EDITOR-or-less fallback.
package view

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/asbjornb/spool/internal/cache"
)

// OpenEntry opens the on-disk file backing sessionKey in $EDITOR,
// jumping to the line of the given entry sequence number when the
// file is a native .spool (one entry per line); for converted vendor
// logs the line numbers don't correspond 1:1 to entries, so the file
// opens at line 1.
func OpenEntry(db *cache.DB, sessionKey string, seq int) error {
	session, err := db.GetSessionByKey(sessionKey)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session not found: %s", sessionKey)
	}
	if _, err := os.Stat(session.FilePath); err != nil {
		return fmt.Errorf("file not found: %s", session.FilePath)
	}

	lineNum := 1
	if seq >= 0 && session.Vendor == "spool" {
		lineNum = seq + 1
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}
	return openInEditor(editor, session.FilePath, lineNum)
}

func openInEditor(editor, filePath string, lineNum int) error {
	var cmd *exec.Cmd

	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		cmd = exec.Command(editor, fmt.Sprintf("+%d", lineNum), filePath)
	case strings.Contains(editor, "code"):
		cmd = exec.Command(editor, "--goto", filePath+":"+strconv.Itoa(lineNum))
	case strings.Contains(editor, "less"):
		cmd = exec.Command(editor, "+"+strconv.Itoa(lineNum), filePath)
	default:
		cmd = exec.Command(editor, filePath)
	}

	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
