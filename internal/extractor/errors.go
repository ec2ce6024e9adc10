package extractor

import "errors"

var (
	// ErrDecryption is returned for an encrypted PDF when no password was
	// given or the given one does not open it.
	ErrDecryption = errors.New("pdf is encrypted and could not be decrypted")

	// ErrNoText is returned when no readable text could be recovered.
	ErrNoText = errors.New("no readable text could be extracted")

	// ErrToolMissing is returned when a required external program is not
	// installed.
	ErrToolMissing = errors.New("required external tool not installed")
)
