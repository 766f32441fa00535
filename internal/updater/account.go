// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// AccountUpdater syncs the settings of the local user.
type AccountUpdater struct {
	accounts store.AccountRepository
}

func NewAccountUpdater(accounts store.AccountRepository) *AccountUpdater {
	return &AccountUpdater{accounts: accounts}
}

func (u *AccountUpdater) LocalIDs(ctx context.Context) ([]service.Singleton, error) {
	if _, err := u.account(ctx); err != nil {
		if errors.Is(err, ErrNoLocalAccount) {
			return nil, nil
		}
		return nil, err
	}
	return []service.Singleton{{}}, nil
}

func (u *AccountUpdater) BuildRecord(ctx context.Context, _ service.Singleton, unknown models.UnknownFields) (models.AccountRecord, bool, error) {
	account, err := u.account(ctx)
	if errors.Is(err, ErrNoLocalAccount) {
		return models.AccountRecord{}, false, nil
	}
	if err != nil {
		return models.AccountRecord{}, false, err
	}

	return models.AccountRecord{
		ProfileKey:           account.ProfileKey,
		GivenName:            account.GivenName,
		FamilyName:           account.FamilyName,
		AvatarURL:            account.AvatarURL,
		ReadReceipts:         account.ReadReceipts,
		TypingIndicators:     account.TypingIndicators,
		LinkPreviews:         account.LinkPreviews,
		PhoneNumberSharing:   account.PhoneNumberSharing,
		UniversalExpireTimer: account.UniversalExpireTimer,
		Unknown:              unknown.Clone(),
	}, true, nil
}

// MergeRecord applies the remote settings. The local profile key wins when
// the remote record lacks one or carries a different one; the next backup
// then uploads it.
func (u *AccountUpdater) MergeRecord(ctx context.Context, record models.AccountRecord) (service.MergeResult[service.Singleton], error) {
	account, err := u.account(ctx)
	if errors.Is(err, ErrNoLocalAccount) {
		return service.InvalidRecord[service.Singleton](), nil
	}
	if err != nil {
		return service.MergeResult[service.Singleton]{}, err
	}

	needsUpdate := len(account.ProfileKey) > 0 && !bytes.Equal(account.ProfileKey, record.ProfileKey)
	if len(account.ProfileKey) == 0 {
		account.ProfileKey = record.ProfileKey
	}

	account.GivenName = record.GivenName
	account.FamilyName = record.FamilyName
	account.AvatarURL = record.AvatarURL
	account.ReadReceipts = record.ReadReceipts
	account.TypingIndicators = record.TypingIndicators
	account.LinkPreviews = record.LinkPreviews
	account.PhoneNumberSharing = record.PhoneNumberSharing
	account.UniversalExpireTimer = record.UniversalExpireTimer

	if err = u.accounts.Save(ctx, account); err != nil {
		return service.MergeResult[service.Singleton]{}, fmt.Errorf("save account: %w", err)
	}
	return service.Merged(service.Singleton{}, needsUpdate), nil
}

func (u *AccountUpdater) UnknownFields(record models.AccountRecord) models.UnknownFields {
	return record.Unknown
}

func (u *AccountUpdater) ShouldReaddOrphan(context.Context, service.Singleton) (bool, error) {
	return true, nil
}

func (u *AccountUpdater) ShouldDeferMerge(models.AccountRecord) bool {
	return false
}

func (u *AccountUpdater) account(ctx context.Context) (models.Account, error) {
	account, err := u.accounts.Get(ctx)
	if errors.Is(err, store.ErrEntityNotFound) {
		return models.Account{}, ErrNoLocalAccount
	}
	return account, err
}
