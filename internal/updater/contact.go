// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-storage-sync/internal/logger"
	"github.com/MKhiriev/go-storage-sync/internal/service"
	"github.com/MKhiriev/go-storage-sync/internal/store"
	"github.com/MKhiriev/go-storage-sync/models"
)

// IDGenerator produces identifiers for recipients first seen remotely.
type IDGenerator interface {
	Generate() string
}

// ContactUpdater syncs recipients other than the local user.
type ContactUpdater struct {
	recipients store.RecipientRepository
	local      *LocalRecipient
	accounts   store.AccountRepository
	ids        IDGenerator

	logger *logger.Logger
}

func NewContactUpdater(recipients store.RecipientRepository, accounts store.AccountRepository, ids IDGenerator, logger *logger.Logger) *ContactUpdater {
	return &ContactUpdater{
		recipients: recipients,
		local:      NewLocalRecipient(accounts),
		accounts:   accounts,
		ids:        ids,
		logger:     logger,
	}
}

// LocalIDs lists every addressable recipient except the local user.
func (u *ContactUpdater) LocalIDs(ctx context.Context) ([]models.RecipientID, error) {
	localID, _, err := u.local.LocalRecipientID(ctx)
	if err != nil {
		return nil, err
	}

	recipients, err := u.recipients.Find(ctx, func(r models.Recipient) bool {
		return r.ID != localID && r.HasServiceID()
	})
	if err != nil {
		return nil, err
	}

	ids := make([]models.RecipientID, 0, len(recipients))
	for _, r := range recipients {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (u *ContactUpdater) BuildRecord(ctx context.Context, id models.RecipientID, unknown models.UnknownFields) (models.ContactRecord, bool, error) {
	recipient, err := u.recipients.Get(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		return models.ContactRecord{}, false, nil
	}
	if err != nil {
		return models.ContactRecord{}, false, err
	}

	localID, _, err := u.local.LocalRecipientID(ctx)
	if err != nil {
		return models.ContactRecord{}, false, err
	}
	if recipient.ID == localID || !recipient.HasServiceID() {
		return models.ContactRecord{}, false, nil
	}

	return models.ContactRecord{
		ACI:                     recipient.ACI,
		PNI:                     recipient.PNI,
		E164:                    recipient.E164,
		ProfileKey:              recipient.ProfileKey,
		GivenName:               recipient.GivenName,
		FamilyName:              recipient.FamilyName,
		Blocked:                 recipient.Blocked,
		Whitelisted:             recipient.Whitelisted,
		Archived:                recipient.Archived,
		MarkedUnread:            recipient.MarkedUnread,
		Hidden:                  recipient.Hidden,
		MutedUntilTimestamp:     recipient.MutedUntil,
		UnregisteredAtTimestamp: recipient.UnregisteredAt,
		Unknown:                 unknown.Clone(),
	}, true, nil
}

// MergeRecord finds the recipient by ACI, then PNI, then phone number and
// creates one when nothing matches. Identity fields known locally but
// missing remotely are kept and reported through NeedsUpdate.
func (u *ContactUpdater) MergeRecord(ctx context.Context, record models.ContactRecord) (service.MergeResult[models.RecipientID], error) {
	log := logger.FromContext(ctx)

	if !record.HasServiceID() {
		return service.InvalidRecord[models.RecipientID](), nil
	}

	account, err := u.accounts.Get(ctx)
	if err != nil && !errors.Is(err, store.ErrEntityNotFound) {
		return service.MergeResult[models.RecipientID]{}, err
	}
	if account.ACI != "" && record.ACI == account.ACI {
		log.Warn().Str("func", "*ContactUpdater.MergeRecord").Msg("contact record points at the local user")
		return service.InvalidRecord[models.RecipientID](), nil
	}

	recipient, found, err := u.find(ctx, record)
	if err != nil {
		return service.MergeResult[models.RecipientID]{}, err
	}
	if !found {
		recipient = models.Recipient{ID: models.RecipientID(u.ids.Generate()), Registered: true}
	}

	needsUpdate := (recipient.ACI != "" && record.ACI == "") ||
		(recipient.PNI != "" && record.PNI == "") ||
		(recipient.E164 != "" && record.E164 == "") ||
		(len(recipient.ProfileKey) > 0 && !bytes.Equal(recipient.ProfileKey, record.ProfileKey))

	recipient.ACI = firstNonEmpty(record.ACI, recipient.ACI)
	recipient.PNI = firstNonEmpty(record.PNI, recipient.PNI)
	recipient.E164 = firstNonEmpty(record.E164, recipient.E164)
	if len(recipient.ProfileKey) == 0 {
		recipient.ProfileKey = record.ProfileKey
	}
	recipient.GivenName = record.GivenName
	recipient.FamilyName = record.FamilyName
	recipient.Blocked = record.Blocked
	recipient.Whitelisted = record.Whitelisted
	recipient.Archived = record.Archived
	recipient.MarkedUnread = record.MarkedUnread
	recipient.Hidden = record.Hidden
	recipient.MutedUntil = record.MutedUntilTimestamp
	recipient.UnregisteredAt = record.UnregisteredAtTimestamp
	recipient.Registered = record.UnregisteredAtTimestamp == 0

	if err = u.recipients.Save(ctx, recipient); err != nil {
		return service.MergeResult[models.RecipientID]{}, fmt.Errorf("save recipient: %w", err)
	}
	return service.Merged(recipient.ID, needsUpdate), nil
}

func (u *ContactUpdater) UnknownFields(record models.ContactRecord) models.UnknownFields {
	return record.Unknown
}

// ShouldReaddOrphan keeps registered contacts. A peer may drop an
// unregistered one.
func (u *ContactUpdater) ShouldReaddOrphan(ctx context.Context, id models.RecipientID) (bool, error) {
	recipient, err := u.recipients.Get(ctx, id)
	if errors.Is(err, store.ErrEntityNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return recipient.UnregisteredAt == 0, nil
}

// ShouldDeferMerge holds back records without an ACI until every record
// that carries one has claimed its recipient.
func (u *ContactUpdater) ShouldDeferMerge(record models.ContactRecord) bool {
	return record.ACI == ""
}

func (u *ContactUpdater) find(ctx context.Context, record models.ContactRecord) (models.Recipient, bool, error) {
	matchers := []func(models.Recipient) bool{
		func(r models.Recipient) bool { return record.ACI != "" && r.ACI == record.ACI },
		func(r models.Recipient) bool { return record.PNI != "" && r.PNI == record.PNI },
		func(r models.Recipient) bool { return record.E164 != "" && r.E164 == record.E164 },
	}
	for _, match := range matchers {
		found, err := u.recipients.Find(ctx, match)
		if err != nil {
			return models.Recipient{}, false, err
		}
		for _, candidate := range found {
			// a recipient with another ACI is a different person
			if record.ACI != "" && candidate.ACI != "" && candidate.ACI != record.ACI {
				continue
			}
			return candidate, true, nil
		}
	}
	return models.Recipient{}, false, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
