package user

// User is the part of an account profile the game server reads.
type User struct {
	ID       string `json:"id" bson:"_id,omitempty"`
	Username string `json:"username" bson:"username"`
	Rating   int    `json:"rating" bson:"rating"`
}
