package scanlog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shelfwise/shelfwise-backend/pkg/db/models"
	"github.com/shelfwise/shelfwise-backend/pkg/enums"
	"github.com/shelfwise/shelfwise-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupScanLogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:scanlog_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS scan_log_entries (
  id TEXT PRIMARY KEY,
  account_id TEXT NOT NULL,
  device_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  location_id TEXT,
  action TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  product_name TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	require.NoError(t, db.Exec("DELETE FROM scan_log_entries").Error)
	return db
}

func appendEntry(t *testing.T, repo Repository, accountID uuid.UUID, name string, created time.Time) *models.ScanLogEntry {
	t.Helper()

	entry := &models.ScanLogEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		DeviceID:    uuid.New(),
		ProductID:   uuid.New(),
		Action:      enums.ScanActionAdd,
		Quantity:    1,
		ProductName: name,
		CreatedAt:   created,
	}
	require.NoError(t, repo.Append(context.Background(), entry))
	return entry
}

func TestRepository_ListNewestFirst(t *testing.T) {
	db := setupScanLogTestDB(t)
	repo := NewRepository(db)
	accountID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	oldest := appendEntry(t, repo, accountID, "Rice", base.Add(-2*time.Hour))
	middle := appendEntry(t, repo, accountID, "Beans", base.Add(-time.Hour))
	newest := appendEntry(t, repo, accountID, "Pasta", base)
	appendEntry(t, repo, uuid.New(), "Other Account", base)

	entries, cursor, err := repo.List(context.Background(), listEntriesParams{AccountID: accountID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newest.ID, entries[0].ID)
	assert.Equal(t, middle.ID, entries[1].ID)
	require.NotNil(t, cursor)

	entries, cursor, err = repo.List(context.Background(), listEntriesParams{AccountID: accountID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, oldest.ID, entries[0].ID)
	assert.Nil(t, cursor)
}

func TestRepository_ListScopedToAccount(t *testing.T) {
	db := setupScanLogTestDB(t)
	repo := NewRepository(db)
	accountID := uuid.New()

	appendEntry(t, repo, uuid.New(), "Someone Else", time.Now().UTC())

	entries, cursor, err := repo.List(context.Background(), listEntriesParams{AccountID: accountID, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Nil(t, cursor)
}

func TestRepository_ListCursorRoundTrip(t *testing.T) {
	db := setupScanLogTestDB(t)
	repo := NewRepository(db)
	accountID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 5; i++ {
		appendEntry(t, repo, accountID, "Item", base.Add(time.Duration(-i)*time.Minute))
	}

	var seen int
	var cursor *pagination.Cursor
	for {
		entries, next, err := repo.List(context.Background(), listEntriesParams{AccountID: accountID, Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		seen += len(entries)
		if next == nil {
			break
		}
		cursor = next
	}
	assert.Equal(t, 5, seen)
}
