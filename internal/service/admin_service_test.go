package service

import (
	"context"
	"errors"
	"testing"
)

type fakeAdminStore struct {
	admins map[int64]bool
	err    error
}

func (f *fakeAdminStore) Add(ctx context.Context, userID int64) error {
	if f.err != nil {
		return f.err
	}
	f.admins[userID] = true
	return nil
}

func (f *fakeAdminStore) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.admins[userID], nil
}

func TestIsAdminCombinesBothSources(t *testing.T) {
	store := &fakeAdminStore{admins: map[int64]bool{200: true}}
	svc := &AdminService{SuperAdminID: 100, Admins: store}
	ctx := context.Background()

	testCases := []struct {
		name     string
		userID   int64
		expected bool
	}{
		{"super admin not in store", 100, true},
		{"stored admin", 200, true},
		{"plain user", 300, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := svc.IsAdmin(ctx, tc.userID); got != tc.expected {
				t.Errorf("IsAdmin(%d) = %v, want %v", tc.userID, got, tc.expected)
			}
		})
	}
}

func TestIsAdminStoreErrorDenies(t *testing.T) {
	store := &fakeAdminStore{err: errors.New("mongo down")}
	svc := &AdminService{SuperAdminID: 100, Admins: store}

	if svc.IsAdmin(context.Background(), 200) {
		t.Error("Store error must deny, not grant")
	}
	// The super admin path does not touch the store.
	if !svc.IsAdmin(context.Background(), 100) {
		t.Error("Super admin must pass even when the store is down")
	}
}

func TestIsAdminZeroSuperAdminDisabled(t *testing.T) {
	store := &fakeAdminStore{admins: map[int64]bool{}}
	svc := &AdminService{SuperAdminID: 0, Admins: store}

	if svc.IsAdmin(context.Background(), 0) {
		t.Error("Unset super admin id must not grant user 0")
	}
}
