// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package updater

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// LocalRecipient resolves the recipient row of the local user from the
// account.
type LocalRecipient struct {
	accounts store.AccountRepository
}

func NewLocalRecipient(accounts store.AccountRepository) *LocalRecipient {
	return &LocalRecipient{accounts: accounts}
}

// LocalRecipientID returns ok == false before registration.
func (l *LocalRecipient) LocalRecipientID(ctx context.Context) (models.RecipientID, bool, error) {
	account, err := l.accounts.Get(ctx)
	if errors.Is(err, store.ErrEntityNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return account.RecipientID, account.RecipientID != "", nil
}
