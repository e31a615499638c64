// Package request holds API request body types.
package request

// UpsertUserRequest is the body for POST /users.
type UpsertUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// UpdateStatsRequest is the body for PATCH /users/{email}/stats.
// Won increments the win counter when true, the loss counter when false.
type UpdateStatsRequest struct {
	Won *bool `json:"won"`
}
