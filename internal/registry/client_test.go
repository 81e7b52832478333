package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateCase(t *testing.T) {
	var received CaseRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/cases", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "case-0042"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	id, err := client.CreateCase(context.Background(), CaseRecord{
		CaseType:   "danos",
		Filename:   "carta-danos-2024-06-03.pdf",
		Recipients: []string{"juridica@aseguradora.co"},
		SentAt:     time.Date(2024, time.June, 3, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "case-0042", id)
	assert.Equal(t, "danos", received.CaseType)
	assert.Equal(t, []string{"juridica@aseguradora.co"}, received.Recipients)
}

func TestCreateCaseRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "case_type is required", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := client.CreateCase(context.Background(), CaseRecord{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Contains(t, err.Error(), "case_type is required")
}

func TestCreateCaseUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, zap.NewNop())
	_, err := client.CreateCase(context.Background(), CaseRecord{CaseType: "danos"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestListCases(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/cases", r.URL.Path)
		json.NewEncoder(w).Encode([]Case{
			{ID: "case-1", CaseType: "danos", Filename: "carta-danos-2024-05-01.pdf"},
			{ID: "case-2", CaseType: "hurto", Filename: "carta-hurto-2024-05-02.pdf"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	cases, err := client.ListCases(context.Background())

	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "case-1", cases[0].ID)
	assert.Equal(t, "hurto", cases[1].CaseType)
}

func TestListCasesBackendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := client.ListCases(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
