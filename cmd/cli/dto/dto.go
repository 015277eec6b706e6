package dto

// Wire types shared by the CLI and the booksync API.

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
	Username     string `json:"username"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
	Status  string `json:"status,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type ReviewResponse struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"external_id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Image      *string `json:"image,omitempty"`
	Rating     int     `json:"rating"`
	Comment    string  `json:"comment"`
	Status     string  `json:"status"`
}

type ReviewEnvelope struct {
	Message string          `json:"message"`
	Review  *ReviewResponse `json:"review,omitempty"`
}

type UserBook struct {
	ExternalID string  `json:"external_id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Image      *string `json:"image,omitempty"`
	Rating     int     `json:"rating"`
	Comment    string  `json:"comment"`
	Status     string  `json:"status"`
}

// SearchResult is the subset of the Google Books search answer the CLI prints.
type SearchResult struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			PublishedDate string   `json:"publishedDate"`
		} `json:"volumeInfo"`
	} `json:"items"`
}
