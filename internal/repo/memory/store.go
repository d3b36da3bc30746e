// Package memory holds a process-local store with the same constraint
// semantics as the postgres store. It backs router tests and local demos.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/portal/internal/domain/announcement"
	"github.com/geocoder89/portal/internal/domain/asset"
	"github.com/geocoder89/portal/internal/domain/user"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Store struct {
	mu     sync.RWMutex
	hasher PasswordHasher

	nextUserID  int64
	nextAssetID int64
	nextNoteID  int64

	users  map[int64]user.User
	assets map[int64]asset.Asset
	notes  []announcement.Announcement
}

func NewStore(hasher PasswordHasher) *Store {
	return &Store{
		hasher: hasher,
		users:  make(map[int64]user.User),
		assets: make(map[int64]asset.Asset),
	}
}

// Users

func (s *Store) uniqueUserFields(email, empID string, skipID int64) error {
	for id, u := range s.users {
		if id == skipID {
			continue
		}
		if u.Email == email {
			return user.ErrEmailTaken
		}
		if u.EmpID == empID {
			return user.ErrEmpIDTaken
		}
	}
	return nil
}

func (s *Store) Create(_ context.Context, req user.CreateUserRequest) (user.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.uniqueUserFields(req.Email, req.EmpID, 0); err != nil {
		return user.User{}, err
	}

	now := time.Now().UTC()
	s.nextUserID++
	u := user.User{
		ID:           s.nextUserID,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmpID:        req.EmpID,
		Designation:  req.Designation,
		IsAdmin:      req.IsAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u

	return u, nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (s *Store) GetByID(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// List orders admins first, then by first name.
func (s *Store) List(_ context.Context) ([]user.User, error) {
	s.mu.RLock()
	out := make([]user.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].IsAdmin != out[j].IsAdmin {
			return out[i].IsAdmin
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}

func (s *Store) Update(_ context.Context, id int64, req user.UpdateUserRequest) (user.User, error) {
	var hash string
	if req.Password != nil {
		h, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return user.User{}, err
		}
		hash = h
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.EmpID != nil {
		u.EmpID = *req.EmpID
	}
	if err := s.uniqueUserFields(u.Email, u.EmpID, id); err != nil {
		return user.User{}, err
	}

	if hash != "" {
		u.PasswordHash = hash
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Designation != nil {
		u.Designation = *req.Designation
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	u.UpdatedAt = time.Now().UTC()

	s.users[id] = u
	return u, nil
}

func (s *Store) ToggleLock(_ context.Context, id int64) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	u.IsLocked = !u.IsLocked
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u

	return u, nil
}

// Delete removes the user and unassigns everything they held.
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.users, id)

	for aid, a := range s.assets {
		if a.UserID != nil && *a.UserID == id {
			a.UserID = nil
			s.assets[aid] = a
		}
	}
	for i, n := range s.notes {
		if n.CreatedBy != nil && *n.CreatedBy == id {
			s.notes[i].CreatedBy = nil
		}
	}

	return nil
}

// Assets

type AssetStore struct {
	s *Store
}

// Assets returns a view with the asset store's method set.
func (s *Store) Assets() *AssetStore {
	return &AssetStore{s: s}
}

func (a *AssetStore) checkAsset(serial string, owner *int64, skipID int64) error {
	for id, existing := range a.s.assets {
		if id != skipID && existing.SerialNumber == serial {
			return asset.ErrSerialTaken
		}
	}
	if owner != nil {
		if _, ok := a.s.users[*owner]; !ok {
			return asset.ErrOwnerNotFound
		}
	}
	return nil
}

func (a *AssetStore) Create(_ context.Context, req asset.CreateAssetRequest) (asset.Asset, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if err := a.checkAsset(req.SerialNumber, req.UserID, 0); err != nil {
		return asset.Asset{}, err
	}

	now := time.Now().UTC()
	a.s.nextAssetID++
	out := asset.Asset{
		ID:           a.s.nextAssetID,
		UserID:       req.UserID,
		Type:         req.Type,
		Model:        req.Model,
		SerialNumber: req.SerialNumber,
		Monitor:      req.Monitor,
		Keyboard:     req.Keyboard,
		Mouse:        req.Mouse,
		WifiLanIP:    req.WifiLanIP,
		Comments:     req.Comments,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	a.s.assets[out.ID] = out

	return out, nil
}

func (a *AssetStore) List(_ context.Context) ([]asset.WithOwner, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := make([]asset.WithOwner, 0, len(a.s.assets))
	for _, item := range a.s.assets {
		row := asset.WithOwner{Asset: item}
		if item.UserID != nil {
			if u, ok := a.s.users[*item.UserID]; ok {
				row.FirstName, row.LastName, row.EmpID = &u.FirstName, &u.LastName, &u.EmpID
			}
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *AssetStore) ListForUser(_ context.Context, userID int64) ([]asset.Asset, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := make([]asset.Asset, 0)
	for _, item := range a.s.assets {
		if item.UserID != nil && *item.UserID == userID {
			out = append(out, item)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *AssetStore) Update(_ context.Context, id int64, req asset.UpdateAssetRequest) (asset.Asset, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	item, ok := a.s.assets[id]
	if !ok {
		return asset.Asset{}, asset.ErrNotFound
	}

	if req.UserID.Set {
		item.UserID = req.UserID.ID
	}
	if req.SerialNumber != nil {
		item.SerialNumber = *req.SerialNumber
	}
	if err := a.checkAsset(item.SerialNumber, item.UserID, id); err != nil {
		return asset.Asset{}, err
	}

	if req.Type != nil {
		item.Type = *req.Type
	}
	if req.Model != nil {
		item.Model = *req.Model
	}
	if req.Monitor != nil {
		item.Monitor = req.Monitor
	}
	if req.Keyboard != nil {
		item.Keyboard = req.Keyboard
	}
	if req.Mouse != nil {
		item.Mouse = req.Mouse
	}
	if req.WifiLanIP != nil {
		item.WifiLanIP = req.WifiLanIP
	}
	if req.Comments != nil {
		item.Comments = *req.Comments
	}
	item.UpdatedAt = time.Now().UTC()

	a.s.assets[id] = item
	return item, nil
}

func (a *AssetStore) Delete(_ context.Context, id int64) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	if _, ok := a.s.assets[id]; !ok {
		return asset.ErrNotFound
	}
	delete(a.s.assets, id)
	return nil
}

// Announcements

type AnnouncementStore struct {
	s *Store
}

func (s *Store) Announcements() *AnnouncementStore {
	return &AnnouncementStore{s: s}
}

func (n *AnnouncementStore) Create(_ context.Context, message string, createdBy int64) (announcement.Announcement, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	if _, ok := n.s.users[createdBy]; !ok {
		return announcement.Announcement{}, user.ErrNotFound
	}

	n.s.nextNoteID++
	out := announcement.Announcement{
		ID:        n.s.nextNoteID,
		Message:   message,
		CreatedBy: &createdBy,
		CreatedAt: time.Now().UTC(),
	}
	n.s.notes = append(n.s.notes, out)

	return out, nil
}

// List returns newest first.
func (n *AnnouncementStore) List(_ context.Context) ([]announcement.Announcement, error) {
	n.s.mu.RLock()
	defer n.s.mu.RUnlock()

	out := make([]announcement.Announcement, 0, len(n.s.notes))
	for i := len(n.s.notes) - 1; i >= 0; i-- {
		out = append(out, n.s.notes[i])
	}
	return out, nil
}
