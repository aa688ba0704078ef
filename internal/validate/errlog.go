package validate

import (
	"fmt"
	"os"
)

// DefaultErrorLogPath is the error log written in the working directory.
const DefaultErrorLogPath = "error.log"

// FileLog appends one line per failure to a file. The file is opened and
// closed on every write, so no handle outlives a call.
type FileLog struct {
	path string
}

// NewFileLog creates an error log that appends to path.
func NewFileLog(path string) *FileLog {
	return &FileLog{path: path}
}

// Path returns the log file location.
func (l *FileLog) Path() string {
	return l.path
}

// Record appends fe to the log file.
func (l *FileLog) Record(fe *FieldError) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open error log: %w", err)
	}
	if _, err := fmt.Fprintln(f, fe.Error()); err != nil {
		f.Close()
		return fmt.Errorf("append error log: %w", err)
	}
	return f.Close()
}

// MemoryLog keeps failures in memory.
type MemoryLog struct {
	Entries []string
}

// Record stores the formatted failure.
func (l *MemoryLog) Record(fe *FieldError) error {
	l.Entries = append(l.Entries, fe.Error())
	return nil
}
