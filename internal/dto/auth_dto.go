package dto

type UserDTO struct {
	Id        string `json:"user_id"`
	Email     string `json:"email"`
	FullName  string `json:"name"`
	AvatarURL string `json:"picture,omitempty"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}
