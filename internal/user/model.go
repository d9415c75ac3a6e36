package user

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	// DefaultAvatarURL is assigned at registration until the user
	// uploads their own picture.
	DefaultAvatarURL = "https://www.gravatar.com/avatar/0?s=200&d=identicon"

	DefaultAboutMe = "Hi there, I'm a new user!"
)

// Avatar is a stored profile image reference.
type Avatar struct {
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
	URL      string `bson:"url" json:"url"`
}

// User represents an account in the system. The password hash is never
// serialized to clients.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	IsAdmin  bool               `bson:"is_admin" json:"is_admin"`
	AboutMe  string             `bson:"about_me" json:"about_me"`
	Avatar   Avatar             `bson:"avatar" json:"avatar"`
	IsActive bool               `bson:"is_active" json:"is_active"`
}

// Summary is the slimmed-down user shape embedded in event and request
// listings.
type Summary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Avatar   Avatar             `bson:"avatar" json:"avatar"`
}

// Summary converts a full user to its embedded listing shape.
func (u *User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
