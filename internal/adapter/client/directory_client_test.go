package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gemdesk/internal/domain/entity"
	"gemdesk/pkg/errors"
)

func TestListPartnersMapsRoster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/partners", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"partners": []map[string]interface{}{
					{"id": "P1", "companyName": "Goldsmith & Co", "type": "manufacturer", "specialties": []string{"engraving"}, "status": "active"},
					{"id": "P2", "companyName": "Stone Traders", "type": "supplier", "status": "inactive"},
				},
			},
		})
	}))
	defer server.Close()

	dc := NewRestDirectoryClient(server.URL, time.Second)
	partners, err := dc.ListPartners(context.Background())
	require.NoError(t, err)

	require.Len(t, partners, 2)
	assert.Equal(t, entity.KindPartner, partners[0].Kind)
	assert.Equal(t, []string{"engraving"}, partners[0].Specialties)
	// No explicit specialties falls back to the partner type.
	assert.Equal(t, []string{"supplier"}, partners[1].Specialties)
	assert.Equal(t, entity.StatusInactive, partners[1].Status)
}

func TestListTeamMembersMapsRoster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"users": []map[string]interface{}{
					{"id": "T1", "name": "Ava Chen", "department": "sales", "status": "active"},
				},
			},
		})
	}))
	defer server.Close()

	dc := NewRestDirectoryClient(server.URL, time.Second)
	members, err := dc.ListTeamMembers(context.Background())
	require.NoError(t, err)

	require.Len(t, members, 1)
	assert.Equal(t, entity.KindTeam, members[0].Kind)
	assert.Equal(t, "sales", members[0].Department)
}

func TestDirectoryFailureIsDirectoryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	dc := NewRestDirectoryClient(server.URL, time.Second)
	_, err := dc.ListPartners(context.Background())
	assert.True(t, errors.Is(err, "DIRECTORY_ERROR"))
}
