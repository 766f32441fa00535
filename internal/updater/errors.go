// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package updater

import "errors"

var (
	// ErrNoLocalAccount is returned when the local account has not been
	// registered yet.
	ErrNoLocalAccount = errors.New("local account is not registered")
)
