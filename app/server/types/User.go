package types

type UserInfoWithID struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
}

type UserRoleUpdateRequest struct {
	Role *string `json:"role"`
}

type SubscriptionToggleResponse struct {
	Subscribed bool   `json:"subscribed"`
	Message    string `json:"message"`
}

type SubscriptionListResponse struct {
	Journalists []UserInfoWithID `json:"journalists"`
	Publishers  []UserInfoWithID `json:"publishers"`
}
