package util

import "os"

// TruncateFile creates filename as an empty file, replacing any previous
// content without confirmation.
func TruncateFile(filename string) error {
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return err
	}
	return f.Close()
}

// AppendFile opens filename for appending, creating it when missing.
func AppendFile(filename string) (*os.File, error) {
	return os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)
}
