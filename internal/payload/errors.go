// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package payload

import "github.com/noisysockets/noise-xx/internal/noiseerr"

// verificationError wraps a payload-verification failure with the stable
// user-facing prefix so upstream code can pattern-match on it regardless
// of cause.
type verificationError struct {
	cause error
}

func (e *verificationError) Error() string {
	return noiseerr.VerificationErrorPrefix + e.cause.Error()
}

func (e *verificationError) Unwrap() error {
	return e.cause
}
