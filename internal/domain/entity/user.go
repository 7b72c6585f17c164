package entity

import "time"

type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Bio       string    `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarRef string    `bson:"avatar_ref,omitempty" json:"avatar_ref,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
