package steps

import "errors"

// Failure taxonomy. Every step error wraps exactly one of these so callers
// can classify failures with errors.Is.
var (
	ErrToolMissing      = errors.New("required tool missing")
	ErrRemoteTransfer   = errors.New("remote transfer failed")
	ErrRepoState        = errors.New("repository state error")
	ErrConfigTarget     = errors.New("config target missing")
	ErrProcessExit      = errors.New("process exited with non-zero status")
	ErrArtifactNotFound = errors.New("artifact not found")
)
