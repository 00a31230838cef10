package posting

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("posting not found")

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

type Posting struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	OwnerID     string    `bson:"ownerId" json:"ownerId"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Category    string    `bson:"category" json:"category"`
	City        string    `bson:"city" json:"city"`
	Budget      int       `bson:"budget" json:"budget"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

type CreatePostingRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=120"`
	Description string `json:"description" binding:"required,max=4000"`
	Category    string `json:"category" binding:"required"`
	City        string `json:"city" binding:"required"`
	Budget      int    `json:"budget" binding:"required,gt=0"`
}

type UpdatePostingRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=120"`
	Description string `json:"description" binding:"required,max=4000"`
	Category    string `json:"category" binding:"required"`
	City        string `json:"city" binding:"required"`
	Budget      int    `json:"budget" binding:"required,gt=0"`
	Status      string `json:"status" binding:"required,oneof=open closed"`
}
