package backup

import "errors"

var (
	// ErrNoSourceData is returned when there is nothing to import.
	ErrNoSourceData = errors.New("backup: no data to import")
	// ErrMalformedPayload is returned when the input is not a backup.
	ErrMalformedPayload = errors.New("backup: malformed payload")
)
