// internal/domain/models/institution.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Institution is a provisioned organization account (created when an
// application is approved). Includes case/diacritic-insensitive fields for
// search/sort.
type Institution struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	NameCI string             `bson:"name_ci" json:"-"` // ← always stored
	Slug   string             `bson:"slug" json:"slug"` // unique, URL-safe

	Type        string `bson:"type" json:"type"` // university | college | research | nonprofit | government | corporate | other
	EmailDomain string `bson:"email_domain" json:"email_domain"`

	Website     string `bson:"website,omitempty" json:"website,omitempty"`
	City        string `bson:"city,omitempty" json:"city,omitempty"`
	CityCI      string `bson:"city_ci,omitempty" json:"-"`
	State       string `bson:"state,omitempty" json:"state,omitempty"`
	StateCI     string `bson:"state_ci,omitempty" json:"-"`
	Country     string `bson:"country,omitempty" json:"country,omitempty"`
	ContactInfo string `bson:"contact_info,omitempty" json:"contact_info,omitempty"`

	Status    string    `bson:"status" json:"status"` // active | disabled
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Location is a physical lost & found desk inside an institution (a campus
// building, a front office) where found items are dropped off and claimed.
type Location struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InstitutionID primitive.ObjectID `bson:"institution_id" json:"institution_id"`

	Name        string `bson:"name" json:"name"`
	NameCI      string `bson:"name_ci" json:"-"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Building    string `bson:"building,omitempty" json:"building,omitempty"`
	Room        string `bson:"room,omitempty" json:"room,omitempty"`

	Status    string    `bson:"status" json:"status"` // active | disabled
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
