package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/craftbazaar/moderation-engine/internal/actions"
	"github.com/craftbazaar/moderation-engine/internal/cinder"
	"github.com/craftbazaar/moderation-engine/internal/models"
	"github.com/craftbazaar/moderation-engine/internal/notify"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Filing the same appeal twice must return the first call's appeal instead
// of refusing the retry, and must not contact the case service again.
func TestAppealRepeatReturnsExistingAppeal(t *testing.T) {
	gdb, mock := newMockDB(t)

	var cinderCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&cinderCalls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cases := NewCaseService(gdb)
	registry := actions.NewRegistry(nopDispatcher{})
	notifier := NewNotifyService(gdb, cases, registry, &notify.LogSender{},
		184, "https://example.com/appeal", nil)
	svc := NewAppealService(gdb, cases, notifier, cinder.NewClient(srv.URL, "token"), "appeals")

	decisionID := uuid.New()
	actorID := uuid.New()
	listingID := uuid.New()
	appealID := uuid.New()
	appealCaseID := uuid.New()

	mock.ExpectQuery(`SELECT (.+) FROM "decisions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "action", "listing_id"}).
			AddRow(decisionID, string(models.ActionDisableListing), listingID))
	mock.ExpectQuery(`SELECT (.+) FROM "appeals"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "decision_id", "case_id", "text"}).
			AddRow(appealID, decisionID, appealCaseID, "please reconsider"))

	got, err := svc.Appeal(context.Background(), AppealInput{
		DecisionID: decisionID,
		ActorID:    &actorID,
		Text:       "please reconsider",
	})
	require.NoError(t, err)
	assert.Equal(t, appealID, got.ID)
	assert.False(t, got.ByReporter())
	assert.EqualValues(t, 0, atomic.LoadInt32(&cinderCalls))
	require.NoError(t, mock.ExpectationsWereMet())
}
