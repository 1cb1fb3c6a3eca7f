package audio

import (
	"errors"
	"fmt"
)

// ErrClipMissing marks a clip that cannot be located. It is cached for the
// session.
var ErrClipMissing = errors.New("clip missing")

// ClipResolutionError reports a key that could not be resolved.
type ClipResolutionError struct {
	Key     ClipKey
	Missing bool
	Err     error
}

func (e *ClipResolutionError) Error() string {
	if e.Missing {
		return fmt.Sprintf("resolve clip %s: missing: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("resolve clip %s: %v", e.Key, e.Err)
}

func (e *ClipResolutionError) Unwrap() []error {
	if e.Missing {
		return []error{ErrClipMissing, e.Err}
	}
	return []error{e.Err}
}

func missing(key ClipKey, cause error) *ClipResolutionError {
	return &ClipResolutionError{Key: key, Missing: true, Err: cause}
}

// ManifestBuildError is the diagnostic recorded for a filename that was left
// out of a manifest.
type ManifestBuildError struct {
	Index    int // position of the sentence within the batch
	Field    string
	Filename string
	Reason   string
}

func (e *ManifestBuildError) Error() string {
	return fmt.Sprintf("sentence %d %s %q: %s", e.Index, e.Field, e.Filename, e.Reason)
}
