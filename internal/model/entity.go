package model

import "time"

// EntityType identifies one of the four CRM target tables.
type EntityType string

const (
	EntityOrganization EntityType = "organization"
	EntityContact      EntityType = "contact"
	EntityOpportunity  EntityType = "opportunity"
	EntityInteraction  EntityType = "interaction"
)

// EntityTypes lists all target entity types in processing order.
var EntityTypes = []EntityType{
	EntityOrganization,
	EntityContact,
	EntityOpportunity,
	EntityInteraction,
}

// Organization is one migrated account row.
type Organization struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Website  string `json:"website,omitempty"`
	Segment  string `json:"segment,omitempty"`
	Priority string `json:"priority,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Contact is one migrated person row.
type Contact struct {
	ID           string `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Title        string `json:"title,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Opportunity is one migrated deal row.
type Opportunity struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Stage        string     `json:"stage,omitempty"`
	Amount       float64    `json:"amount,omitempty"`
	CloseDate    *time.Time `json:"close_date,omitempty"`
	Organization string     `json:"organization,omitempty"`
}

// Interaction is one migrated activity/note row.
type Interaction struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind,omitempty"`
	Subject    string     `json:"subject"`
	Notes      string     `json:"notes,omitempty"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
	Contact    string     `json:"contact,omitempty"`
}

// EntityCounts holds aggregate row counts per target table.
type EntityCounts struct {
	Organizations int `json:"organizations"`
	Contacts      int `json:"contacts"`
	Opportunities int `json:"opportunities"`
	Interactions  int `json:"interactions"`
}
