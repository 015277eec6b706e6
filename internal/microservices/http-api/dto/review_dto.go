package dto

import "booksync/internal/microservices/http-api/models"

// ReviewRequest is the body of POST and PUT /api/user/books/:external_id.
// An empty status means "lendo".
type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
	Status  string `json:"status" binding:"omitempty,review_status"`
}

// StatusRequest is the body of PATCH /api/user/books/:external_id/status.
type StatusRequest struct {
	Status string `json:"status" binding:"required,review_status"`
}

type ReviewResponse struct {
	ID         string  `json:"id"`
	ExternalID string  `json:"external_id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Image      *string `json:"image"`
	Rating     int     `json:"rating"`
	Comment    string  `json:"comment"`
	Status     string  `json:"status"`
}

// UserBookResponse is one entry of GET /api/user/books.
type UserBookResponse struct {
	ExternalID string  `json:"external_id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	Image      *string `json:"image"`
	Rating     int     `json:"rating"`
	Comment    string  `json:"comment"`
	Status     string  `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ReviewEnvelope pairs a confirmation message with the affected review.
type ReviewEnvelope struct {
	Message string          `json:"message"`
	Review  *ReviewResponse `json:"review"`
}

// FromModelToReviewResponse expects review.Book to be populated.
func FromModelToReviewResponse(review *models.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:         review.ID,
		ExternalID: review.Book.ExternalID,
		Title:      review.Book.Title,
		Author:     review.Book.Author,
		Image:      review.Book.ImageURL,
		Rating:     review.Rating,
		Comment:    review.Comment,
		Status:     review.Status,
	}
}

func FromModelToUserBookResponse(review *models.Review) UserBookResponse {
	return UserBookResponse{
		ExternalID: review.Book.ExternalID,
		Title:      review.Book.Title,
		Author:     review.Book.Author,
		Image:      review.Book.ImageURL,
		Rating:     review.Rating,
		Comment:    review.Comment,
		Status:     review.Status,
	}
}
