package cinder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReport(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq ReportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]string{"job_id": "job-42"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	jobID, err := c.CreateReport(context.Background(), ReportRequest{
		Entity:    Entity{EntityType: "listing", Attributes: map[string]string{"slug": "x"}},
		Reason:    "policy_violation",
		QueueSlug: "listings",
	})
	require.NoError(t, err)
	assert.Equal(t, "job-42", jobID)
	assert.Equal(t, "/create_report", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "listing", gotReq.Entity.EntityType)
}

func TestCreateDecision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/job-42/decision", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"uuid": "dec-7"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	id, err := c.CreateDecision(context.Background(), "job-42", DecisionRequest{
		Action: "disable_listing",
	})
	require.NoError(t, err)
	assert.Equal(t, "dec-7", id)
}

func TestCreateOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/decisions/dec-7/override/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"uuid": "dec-8"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	id, err := c.CreateOverride(context.Background(), "dec-7", DecisionRequest{
		Action: "approve",
	})
	require.NoError(t, err)
	assert.Equal(t, "dec-8", id)
}

func TestCreateAppeal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appeal", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"external_id": "appeal-1"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	id, err := c.CreateAppeal(context.Background(), AppealRequest{
		DecisionToAppealID: "dec-7",
		Reasoning:          "it was a false positive",
		QueueSlug:          "appeals",
	})
	require.NoError(t, err)
	assert.Equal(t, "appeal-1", id)
}

func TestErrorStatusIncludesBodySnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"unknown queue"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	_, err := c.CreateReport(context.Background(), ReportRequest{Reason: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Contains(t, err.Error(), "unknown queue")
}
