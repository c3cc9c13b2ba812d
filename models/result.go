package models

import (
	"time"

	"github.com/google/uuid"
)

// StoredResult represents a raw model response kept between the processing
// request and the rendering request
type StoredResult struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
