package asset

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

type Asset struct {
	ID           int64     `json:"id"`
	UserID       *int64    `json:"user_id"`
	Type         string    `json:"type"`
	Model        string    `json:"model"`
	SerialNumber string    `json:"serial_number"`
	Monitor      *string   `json:"monitor"`
	Keyboard     *string   `json:"keyboard"`
	Mouse        *string   `json:"mouse"`
	WifiLanIP    *string   `json:"wifi_lan_ip"`
	Comments     string    `json:"comments"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WithOwner is the admin list row: the asset plus its holder, nulls when unassigned.
type WithOwner struct {
	Asset
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	EmpID     *string `json:"emp_id"`
}

var (
	ErrNotFound       = errors.New("asset not found")
	ErrSerialTaken    = errors.New("serial number already in use")
	ErrOwnerNotFound  = errors.New("owning user does not exist")
	ErrInvalidOwnerID = errors.New("user_id must be a number or null")
)

type CreateAssetRequest struct {
	UserID       *int64  `json:"user_id" binding:"omitempty,min=1"`
	Type         string  `json:"type" binding:"required,notblank,max=60"`
	Model        string  `json:"model" binding:"required,notblank,max=120"`
	SerialNumber string  `json:"serial_number" binding:"required,notblank,max=120"`
	Monitor      *string `json:"monitor" binding:"omitempty,max=120"`
	Keyboard     *string `json:"keyboard" binding:"omitempty,max=120"`
	Mouse        *string `json:"mouse" binding:"omitempty,max=120"`
	WifiLanIP    *string `json:"wifi_lan_ip" binding:"omitempty,max=64"`
	Comments     string  `json:"comments" binding:"omitempty,max=2000"`
}

// UpdateAssetRequest is a partial update. UserID distinguishes "absent"
// (keep the holder) from null (unassign).
type UpdateAssetRequest struct {
	UserID       OwnerRef `json:"user_id"`
	Type         *string  `json:"type" binding:"omitempty,notblank,max=60"`
	Model        *string  `json:"model" binding:"omitempty,notblank,max=120"`
	SerialNumber *string  `json:"serial_number" binding:"omitempty,notblank,max=120"`
	Monitor      *string  `json:"monitor" binding:"omitempty,max=120"`
	Keyboard     *string  `json:"keyboard" binding:"omitempty,max=120"`
	Mouse        *string  `json:"mouse" binding:"omitempty,max=120"`
	WifiLanIP    *string  `json:"wifi_lan_ip" binding:"omitempty,max=64"`
	Comments     *string  `json:"comments" binding:"omitempty,max=2000"`
}

// OwnerRef is a tri-state JSON field: absent, null, or a user id.
type OwnerRef struct {
	Set bool
	ID  *int64
}

func (o *OwnerRef) UnmarshalJSON(b []byte) error {
	o.Set = true

	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.ID = nil
		return nil
	}

	var id int64
	if err := json.Unmarshal(b, &id); err != nil || id < 1 {
		return ErrInvalidOwnerID
	}

	o.ID = &id
	return nil
}

func (o OwnerRef) MarshalJSON() ([]byte, error) {
	if o.ID == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.ID)
}
