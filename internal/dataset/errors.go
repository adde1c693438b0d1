package dataset

import "fmt"

// UnsupportedFormatError is returned for uploads that are neither a flat
// CSV file nor a readable zip archive.
type UnsupportedFormatError struct {
	Name string
	Err  error // underlying cause, e.g. a corrupt archive
}

func (e *UnsupportedFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unsupported upload %q: %s", e.Name, e.Err)
	}
	return fmt.Sprintf("unsupported upload %q: upload a .csv or .zip only", e.Name)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return e.Err
}

// ArchiveTooLargeError is returned when an archive decompresses to more than
// the configured limit.
type ArchiveTooLargeError struct {
	Name  string
	Limit int64
}

func (e *ArchiveTooLargeError) Error() string {
	return fmt.Sprintf("archive %q expands beyond %d bytes", e.Name, e.Limit)
}
