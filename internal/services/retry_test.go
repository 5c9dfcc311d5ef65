// retry_test.go
//
// Document analysis versioning and provenance service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of docanalysis.
// docanalysis is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// docanalysis is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with docanalysis.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyDo(t *testing.T) {
	permanent := errors.New("permanent")

	tests := []struct {
		name         string
		failures     int
		failWith     error
		wantErr      error
		wantAttempts int
	}{
		{name: "first try", failures: 0, wantAttempts: 1},
		{name: "recovers after contention", failures: 2, failWith: errContention, wantAttempts: 3},
		{name: "exhausted", failures: 10, failWith: errContention, wantErr: errContention, wantAttempts: 5},
		{name: "not retryable", failures: 10, failWith: permanent, wantErr: permanent, wantAttempts: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			attempts := 0
			err := testPolicy().Do(context.Background(), func() error {
				attempts++
				if attempts <= tc.failures {
					return tc.failWith
				}
				return nil
			}, isRetryable)

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.wantAttempts, attempts)
		})
	}
}

func TestRetryPolicyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := DefaultRetryPolicy().Do(ctx, func() error {
		attempts++
		return errContention
	}, isRetryable)
	assert.Error(t, err)
	assert.LessOrEqual(t, attempts, 1)
}
