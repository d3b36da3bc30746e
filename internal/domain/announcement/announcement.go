package announcement

import "time"

type Announcement struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	CreatedBy *int64    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateAnnouncementRequest struct {
	Message string `json:"message" binding:"required,notblank,max=2000"`
}
