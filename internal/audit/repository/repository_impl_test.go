package repository

import (
	"context"
	"testing"
	"time"

	"github.com/brightframelabs/portal/internal/audit/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupRepo(t *testing.T) domain.Repository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.WebhookLogEntry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return Provide(db, node)
}

func entryWith(eventID string, status domain.LogStatus, receivedAt time.Time) *domain.WebhookLogEntry {
	var pid *string
	if eventID != "" {
		pid = &eventID
	}
	return &domain.WebhookLogEntry{
		ProviderEventID:   pid,
		EventType:         "payment.captured",
		Status:            status,
		Payload:           []byte(`{"event":"payment.captured"}`),
		SignatureVerified: true,
		ReceivedAt:        receivedAt,
	}
}

func TestInsertAssignsID(t *testing.T) {
	repo := setupRepo(t)

	entry := entryWith("evt_1", domain.StatusReceived, time.Now().UTC())
	require.NoError(t, repo.Insert(context.Background(), nil, entry))
	assert.NotZero(t, entry.ID)
}

func TestFindByProviderEventIDReturnsEarliest(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	base := time.Now().UTC()

	first := entryWith("evt_1", domain.StatusProcessed, base.Add(-time.Minute))
	require.NoError(t, repo.Insert(ctx, nil, first))
	require.NoError(t, repo.Insert(ctx, nil, entryWith("evt_1", domain.StatusReceived, base)))

	got, err := repo.FindByProviderEventID(ctx, "evt_1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, domain.StatusProcessed, got.Status)
}

func TestFindByProviderEventIDMissing(t *testing.T) {
	repo := setupRepo(t)

	got, err := repo.FindByProviderEventID(context.Background(), "evt_nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListFiltersByStatus(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Insert(ctx, nil, entryWith("evt_1", domain.StatusProcessed, now.Add(-2*time.Minute))))
	require.NoError(t, repo.Insert(ctx, nil, entryWith("evt_2", domain.StatusFailed, now.Add(-time.Minute))))
	require.NoError(t, repo.Insert(ctx, nil, entryWith("evt_3", domain.StatusProcessed, now)))

	entries, err := repo.List(ctx, domain.ListRequest{Status: domain.StatusProcessed})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "evt_3", *entries[0].ProviderEventID)
	assert.Equal(t, "evt_1", *entries[1].ProviderEventID)
}

func TestListCapsLimit(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, nil, entryWith("", domain.StatusReceived, now.Add(time.Duration(i)*time.Second))))
	}

	entries, err := repo.List(ctx, domain.ListRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = repo.List(ctx, domain.ListRequest{Limit: 10000})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestDeleteOlderThan(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Insert(ctx, nil, entryWith("evt_old", domain.StatusProcessed, now.Add(-100*24*time.Hour))))
	require.NoError(t, repo.Insert(ctx, nil, entryWith("evt_new", domain.StatusProcessed, now)))

	deleted, err := repo.DeleteOlderThan(ctx, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "evt_new", *remaining[0].ProviderEventID)
}
