package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Executing a decision that already carries an action date must not touch
// the target or the audit log again, no matter how often the task retries.
func TestExecuteActionAlreadyExecutedIsNoOp(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := newTestDecisionService(gdb)

	decisionID := uuid.New()
	listingID := uuid.New()
	executedAt := time.Now().UTC().Add(-time.Hour)

	expectExecutedDecision := func() {
		mock.ExpectQuery(`SELECT (.+) FROM "decisions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "action", "listing_id", "action_date"}).
				AddRow(decisionID, string(models.ActionDisableListing), listingID, executedAt))
		mock.ExpectQuery(`SELECT (.+) FROM "decision_policies"`).
			WillReturnRows(sqlmock.NewRows([]string{"decision_id", "policy_id"}))
	}

	expectExecutedDecision()
	entry, held, err := svc.ExecuteAction(decisionID, false)
	require.NoError(t, err)
	assert.Nil(t, entry)
	assert.False(t, held)

	// Releasing a hold on an already-executed decision is the same no-op.
	expectExecutedDecision()
	released, err := svc.ReleaseHold(decisionID)
	require.NoError(t, err)
	assert.Nil(t, released)

	require.NoError(t, mock.ExpectationsWereMet())
}

// A decision citing a policy whose enforcement actions do not include the
// decision's action is refused before anything is written.
func TestRecordRejectsUnauthorizedPolicy(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := newTestDecisionService(gdb)

	policyID := uuid.New()
	caseID := uuid.New()
	listingID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "policies"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "enforcement_actions"}).
			AddRow(policyID, "Spam", []byte(`["disable_listing"]`)))

	_, err := svc.Record(context.Background(), RecordDecisionInput{
		Target:    models.ListingRef(listingID),
		Action:    models.ActionBanAccount,
		CaseID:    &caseID,
		PolicyIDs: []uuid.UUID{policyID},
	})
	require.ErrorIs(t, err, ErrConfig)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Citing a policy id that does not exist is a configuration error, not a
// silently shorter policy list.
func TestRecordRejectsUnknownPolicy(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := newTestDecisionService(gdb)

	caseID := uuid.New()
	listingID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "policies"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "enforcement_actions"}))

	_, err := svc.Record(context.Background(), RecordDecisionInput{
		Target:    models.ListingRef(listingID),
		Action:    models.ActionDisableListing,
		CaseID:    &caseID,
		PolicyIDs: []uuid.UUID{uuid.New()},
	})
	require.ErrorIs(t, err, ErrConfig)
	require.NoError(t, mock.ExpectationsWereMet())
}
