package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func expectQueueCaseLoad(mock sqlmock.Sqlmock, caseID, listingID uuid.UUID,
	fromQueue string, resolvable bool) {
	mock.ExpectQuery(`SELECT (.+) FROM "cases"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "listing_id", "from_queue", "resolvable_locally"}).
			AddRow(caseID, listingID, fromQueue, resolvable))
	mock.ExpectQuery(`SELECT (.+) FROM "decisions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT (.+) FROM "reports"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
}

// Moving into a locally-resolvable queue marks the case and raises exactly
// one escalation flag on the listing's current version.
func TestProcessQueueMoveIntoResolvableQueue(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewQueueService(gdb, NewCaseService(gdb), []string{"listing-review"})

	caseID := uuid.New()
	listingID := uuid.New()
	versionID := uuid.New()

	expectQueueCaseLoad(mock, caseID, listingID, "screening", false)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "queue_moves"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectExec(`UPDATE "cases" SET "from_queue"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "cases" SET "resolvable_locally"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "listings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "current_version_id"}).
			AddRow(listingID, versionID))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "version_review_flags"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "version_review_flags"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	require.NoError(t, svc.ProcessQueueMove(caseID, "listing-review", "routed for local review"))
	require.NoError(t, mock.ExpectationsWereMet())
}

// A repeat move into the same resolvable queue must not stack a duplicate
// flag on a version whose escalation flag is still active.
func TestProcessQueueMoveDoesNotDuplicateFlag(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewQueueService(gdb, NewCaseService(gdb), []string{"listing-review"})

	caseID := uuid.New()
	listingID := uuid.New()
	versionID := uuid.New()

	expectQueueCaseLoad(mock, caseID, listingID, "screening", false)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "queue_moves"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectExec(`UPDATE "cases" SET "from_queue"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "cases" SET "resolvable_locally"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT (.+) FROM "listings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "current_version_id"}).
			AddRow(listingID, versionID))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "version_review_flags"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	require.NoError(t, svc.ProcessQueueMove(caseID, "listing-review", "moved again"))
	require.NoError(t, mock.ExpectationsWereMet())
}

// Moving OUT of a locally-resolvable queue records the move and the new
// queue but clears neither resolvable_locally nor any review flag.
func TestProcessQueueMoveOutKeepsEscalationState(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewQueueService(gdb, NewCaseService(gdb), []string{"listing-review"})

	caseID := uuid.New()
	listingID := uuid.New()

	expectQueueCaseLoad(mock, caseID, listingID, "listing-review", true)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "queue_moves"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectExec(`UPDATE "cases" SET "from_queue"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.ProcessQueueMove(caseID, "spam", "bounced back out"))
	require.NoError(t, mock.ExpectationsWereMet())
}
