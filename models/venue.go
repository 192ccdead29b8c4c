package models

// Venue is the read-only projection of a venue the booking engine needs.
type Venue struct {
	ID       string `bson:"id" json:"id" mapstructure:"id"`
	Name     string `bson:"name,omitempty" json:"name,omitempty" mapstructure:"name"`
	Capacity int    `bson:"capacity" json:"capacity" mapstructure:"capacity"`
}
