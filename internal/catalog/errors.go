// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNotFound is returned when the catalog has no table at the
	// requested identity. Callers create the table and retry.
	ErrTableNotFound = errors.New("table not found")

	// ErrTableAlreadyExists is returned when a create races with another
	// writer. Callers reload the winner's metadata and continue.
	ErrTableAlreadyExists = errors.New("table already exists")

	// ErrCommitConflict is returned when a commit's snapshot assertion no
	// longer holds because another writer committed first. The data file is
	// already in storage; only the registration failed.
	ErrCommitConflict = errors.New("commit conflict: table snapshot changed")
)

// TransientError wraps failures worth retrying: network errors and 5xx
// responses. Conflict and not-found responses are never wrapped.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient catalog error: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
