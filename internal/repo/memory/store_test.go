package memory

import (
	"context"
	"testing"

	"github.com/geocoder89/portal/internal/domain/asset"
	"github.com/geocoder89/portal/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }

func newUser(email, empID, first string, admin bool) user.CreateUserRequest {
	return user.CreateUserRequest{
		Email:     email,
		Password:  "password1",
		FirstName: first,
		LastName:  "Test",
		EmpID:     empID,
		IsAdmin:   admin,
	}
}

func TestStore_UserUniqueness(t *testing.T) {
	ctx := context.Background()
	s := NewStore(plainHasher{})

	_, err := s.Create(ctx, newUser("a@portal.com", "E1", "Ann", false))
	require.NoError(t, err)

	_, err = s.Create(ctx, newUser("a@portal.com", "E2", "Ann", false))
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	_, err = s.Create(ctx, newUser("b@portal.com", "E1", "Ben", false))
	assert.ErrorIs(t, err, user.ErrEmpIDTaken)
}

func TestStore_ListOrdersAdminsFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore(plainHasher{})

	for _, req := range []user.CreateUserRequest{
		newUser("z@portal.com", "E1", "Zed", false),
		newUser("b@portal.com", "E2", "Bea", false),
		newUser("admin@portal.com", "E3", "Yan", true),
	} {
		_, err := s.Create(ctx, req)
		require.NoError(t, err)
	}

	list, err := s.List(ctx)
	require.NoError(t, err)

	names := []string{list[0].FirstName, list[1].FirstName, list[2].FirstName}
	assert.Equal(t, []string{"Yan", "Bea", "Zed"}, names)
}

func TestStore_DeleteUserDetachesAssets(t *testing.T) {
	ctx := context.Background()
	s := NewStore(plainHasher{})
	assets := s.Assets()

	u, err := s.Create(ctx, newUser("a@portal.com", "E1", "Ann", false))
	require.NoError(t, err)

	a, err := assets.Create(ctx, asset.CreateAssetRequest{UserID: &u.ID, Type: "laptop", Model: "X1", SerialNumber: "SN-1"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, u.ID))

	list, err := assets.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	assert.Nil(t, list[0].UserID)
	assert.Nil(t, list[0].FirstName)

	assert.ErrorIs(t, s.Delete(ctx, u.ID), user.ErrNotFound)
}

func TestAssetStore_Constraints(t *testing.T) {
	ctx := context.Background()
	s := NewStore(plainHasher{})
	assets := s.Assets()

	_, err := assets.Create(ctx, asset.CreateAssetRequest{Type: "laptop", Model: "X1", SerialNumber: "SN-1"})
	require.NoError(t, err)

	_, err = assets.Create(ctx, asset.CreateAssetRequest{Type: "laptop", Model: "X1", SerialNumber: "SN-1"})
	assert.ErrorIs(t, err, asset.ErrSerialTaken)

	ghost := int64(42)
	_, err = assets.Create(ctx, asset.CreateAssetRequest{UserID: &ghost, Type: "laptop", Model: "X1", SerialNumber: "SN-2"})
	assert.ErrorIs(t, err, asset.ErrOwnerNotFound)
}

func TestAssetStore_UpdateOwnerStates(t *testing.T) {
	ctx := context.Background()
	s := NewStore(plainHasher{})
	assets := s.Assets()

	u, err := s.Create(ctx, newUser("a@portal.com", "E1", "Ann", false))
	require.NoError(t, err)

	a, err := assets.Create(ctx, asset.CreateAssetRequest{UserID: &u.ID, Type: "laptop", Model: "X1", SerialNumber: "SN-1"})
	require.NoError(t, err)

	comment := "new battery"
	a, err = assets.Update(ctx, a.ID, asset.UpdateAssetRequest{Comments: &comment})
	require.NoError(t, err)
	require.NotNil(t, a.UserID, "absent user_id keeps the holder")

	a, err = assets.Update(ctx, a.ID, asset.UpdateAssetRequest{UserID: asset.OwnerRef{Set: true}})
	require.NoError(t, err)
	assert.Nil(t, a.UserID, "null user_id unassigns")

	mine, err := assets.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestAnnouncementStore_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore(plainHasher{})
	notes := s.Announcements()

	u, err := s.Create(ctx, newUser("admin@portal.com", "E1", "Ann", true))
	require.NoError(t, err)

	_, err = notes.Create(ctx, "first", u.ID)
	require.NoError(t, err)
	_, err = notes.Create(ctx, "second", u.ID)
	require.NoError(t, err)

	list, err := notes.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message)
}
