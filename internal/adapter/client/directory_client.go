package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gemdesk/internal/domain/entity"
	"gemdesk/pkg/errors"
)

// RestDirectoryClient loads partner and team-member rosters from the
// directory service.
type RestDirectoryClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRestDirectoryClient(baseURL string, timeout time.Duration) *RestDirectoryClient {
	return &RestDirectoryClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type partnerPayload struct {
	ID          string   `json:"id"`
	CompanyName string   `json:"companyName"`
	Type        string   `json:"type"`
	Specialties []string `json:"specialties"`
	Status      string   `json:"status"`
}

type teamMemberPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Status     string `json:"status"`
}

type directoryEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Partners []partnerPayload    `json:"partners"`
		Users    []teamMemberPayload `json:"users"`
	} `json:"data"`
}

func (dc *RestDirectoryClient) ListPartners(ctx context.Context) ([]entity.Entity, error) {
	envelope, err := dc.get(ctx, "/partners")
	if err != nil {
		return nil, err
	}

	partners := make([]entity.Entity, 0, len(envelope.Data.Partners))
	for _, p := range envelope.Data.Partners {
		specialties := p.Specialties
		if specialties == nil && p.Type != "" {
			specialties = []string{p.Type}
		}
		partners = append(partners, entity.Entity{
			ID:          p.ID,
			DisplayName: p.CompanyName,
			Kind:        entity.KindPartner,
			Status:      normalizeStatus(p.Status),
			Specialties: specialties,
		})
	}
	return partners, nil
}

func (dc *RestDirectoryClient) ListTeamMembers(ctx context.Context) ([]entity.Entity, error) {
	envelope, err := dc.get(ctx, "/users")
	if err != nil {
		return nil, err
	}

	members := make([]entity.Entity, 0, len(envelope.Data.Users))
	for _, u := range envelope.Data.Users {
		members = append(members, entity.Entity{
			ID:          u.ID,
			DisplayName: u.Name,
			Kind:        entity.KindTeam,
			Status:      normalizeStatus(u.Status),
			Department:  u.Department,
		})
	}
	return members, nil
}

func (dc *RestDirectoryClient) get(ctx context.Context, path string) (*directoryEnvelope, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", dc.baseURL+path, nil)
	if err != nil {
		return nil, errors.Directory("Failed to create directory request", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := dc.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.Directory("Directory service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Directory("Failed to read directory response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Directory(fmt.Sprintf("Directory service returned status %d", resp.StatusCode), nil)
	}

	var envelope directoryEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Directory("Failed to parse directory response", err)
	}
	if !envelope.Success {
		return nil, errors.Directory("Directory service reported failure", nil)
	}

	return &envelope, nil
}

func normalizeStatus(status string) entity.EntityStatus {
	if status == string(entity.StatusInactive) {
		return entity.StatusInactive
	}
	return entity.StatusActive
}
