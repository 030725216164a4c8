package models

import "time"

// User is a registered bot user. Language is the interface language the
// user picked; it defaults to uz until changed.
type User struct {
	UserID           int64     `bson:"_id" json:"user_id"`
	Username         string    `bson:"username" json:"username"`
	FirstName        string    `bson:"first_name" json:"first_name"`
	Language         string    `bson:"language" json:"language"`
	RegistrationDate time.Time `bson:"registration_date" json:"registration_date"`
}
