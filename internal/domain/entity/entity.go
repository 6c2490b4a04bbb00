package entity

type EntityKind string

const (
	KindPartner EntityKind = "partner"
	KindTeam    EntityKind = "team"
)

type EntityStatus string

const (
	StatusActive   EntityStatus = "active"
	StatusInactive EntityStatus = "inactive"
)

type Entity struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	Kind        EntityKind   `json:"kind"`
	Status      EntityStatus `json:"status"`
	Specialties []string     `json:"specialties,omitempty"` // partners only
	Department  string       `json:"department,omitempty"`  // team members only
}

func (e *Entity) IsActive() bool {
	return e.Status == StatusActive
}
