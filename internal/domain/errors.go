package domain

import (
	"github.com/cockroachdb/errors"
)

// Error kinds. Concrete errors are marked with one of these so callers can
// branch with errors.Is regardless of the wrapped cause.
var (
	ErrFilesystem      = errors.New("filesystem error")
	ErrFileStat        = errors.New("file stat error")
	ErrFileOperation   = errors.New("file operation error")
	ErrVersionControl  = errors.New("version control error")
	ErrNotRepository   = errors.New("not a git repository")
	ErrNothingToCommit = errors.New("nothing to commit")
)

func wrapOrNew(cause error, format string, args ...interface{}) error {
	if cause == nil {
		return errors.Newf(format, args...)
	}
	return errors.Wrapf(cause, format, args...)
}

// FilesystemError reports an unreadable or missing scan root.
func FilesystemError(path string, cause error) error {
	var err error
	if cause == nil {
		err = errors.Newf("cannot scan %s: not a directory", path)
	} else {
		err = errors.Wrapf(cause, "cannot scan %s", path)
	}
	return errors.WithHint(errors.Mark(err, ErrFilesystem),
		"check that the path exists and is a readable directory")
}

// FileStatError reports a single file that could not be inspected.
func FileStatError(path string, cause error) error {
	return errors.Mark(wrapOrNew(cause, "stat %s", path), ErrFileStat)
}

// FileOperationError reports a failed write of a managed file.
func FileOperationError(path string, cause error) error {
	return errors.WithHint(errors.Mark(wrapOrNew(cause, "update %s", path), ErrFileOperation),
		"the file was left unchanged; check permissions and free disk space")
}

// VersionControlError reports a failed git invocation.
func VersionControlError(op string, cause error) error {
	return errors.Mark(wrapOrNew(cause, "git %s", op), ErrVersionControl)
}

// NotRepositoryError reports that path is not inside a git work tree.
func NotRepositoryError(path string) error {
	return errors.WithHint(errors.Mark(errors.Newf("%s is not a git repository", path), ErrNotRepository),
		"run 'qgit first' to initialize one or 'git init' manually")
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNotRepository), errors.Is(err, ErrFilesystem):
		return 2
	case errors.Is(err, ErrFileOperation):
		return 3
	default:
		return 1
	}
}
