package authz

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSimpleMembershipStore_GetBrandMembership(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewSimpleMembershipStore(db)
	ctx := context.Background()

	tests := []struct {
		name       string
		userID     string
		brandID    string
		mockFunc   func()
		wantRole   BrandRole
		wantStatus MemberStatus
		wantErr    error
	}{
		{
			name:    "active owner",
			userID:  "user-1",
			brandID: "brand-1",
			mockFunc: func() {
				mock.ExpectQuery("SELECT id, role, status FROM brand_members").
					WithArgs("user-1", "brand-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "role", "status"}).AddRow("m-1", "owner", "active"))
			},
			wantRole:   BrandRoleOwner,
			wantStatus: StatusActive,
		},
		{
			name:    "suspended manager",
			userID:  "user-2",
			brandID: "brand-1",
			mockFunc: func() {
				mock.ExpectQuery("SELECT id, role, status FROM brand_members").
					WithArgs("user-2", "brand-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "role", "status"}).AddRow("m-2", "manager", "suspended"))
			},
			wantRole:   BrandRoleManager,
			wantStatus: StatusSuspended,
		},
		{
			name:    "no row maps to ErrNotFound",
			userID:  "user-3",
			brandID: "brand-1",
			mockFunc: func() {
				mock.ExpectQuery("SELECT id, role, status FROM brand_members").
					WithArgs("user-3", "brand-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:    "query failure is not ErrNotFound",
			userID:  "user-4",
			brandID: "brand-1",
			mockFunc: func() {
				mock.ExpectQuery("SELECT id, role, status FROM brand_members").
					WithArgs("user-4", "brand-1").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockFunc()
			m, err := store.GetBrandMembership(ctx, tt.userID, tt.brandID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetBrandMembership() error = %v, want %v", err, tt.wantErr)
				}
				if tt.wantErr != ErrNotFound && errors.Is(err, ErrNotFound) {
					t.Errorf("store failure must not look like a missing row")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetBrandMembership() error = %v", err)
			}
			if m.Role != tt.wantRole || m.Status != tt.wantStatus {
				t.Errorf("GetBrandMembership() = role %v status %v, want %v %v", m.Role, m.Status, tt.wantRole, tt.wantStatus)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestSimpleMembershipStore_GetBranchMembership(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewSimpleMembershipStore(db)
	ctx := context.Background()

	tests := []struct {
		name       string
		mockFunc   func()
		wantRole   BranchRole
		wantStatus MemberStatus
		wantErr    error
	}{
		{
			name: "active staff",
			mockFunc: func() {
				mock.ExpectQuery("SELECT id, role, status FROM branch_members").
					WithArgs("user-1", "branch-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "role", "status"}).AddRow("m-1", "staff", "active"))
			},
			wantRole:   BranchRoleStaff,
			wantStatus: StatusActive,
		},
		{
			name: "invited viewer",
			mockFunc: func() {
				mock.ExpectQuery("SELECT id, role, status FROM branch_members").
					WithArgs("user-1", "branch-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "role", "status"}).AddRow("m-2", "viewer", "invited"))
			},
			wantRole:   BranchRoleViewer,
			wantStatus: StatusInvited,
		},
		{
			name: "no row maps to ErrNotFound",
			mockFunc: func() {
				mock.ExpectQuery("SELECT id, role, status FROM branch_members").
					WithArgs("user-1", "branch-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockFunc()
			m, err := store.GetBranchMembership(ctx, "user-1", "branch-1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetBranchMembership() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetBranchMembership() error = %v", err)
			}
			if m.Role != tt.wantRole || m.Status != tt.wantStatus {
				t.Errorf("GetBranchMembership() = role %v status %v, want %v %v", m.Role, m.Status, tt.wantRole, tt.wantStatus)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unfulfilled expectations: %v", err)
			}
		})
	}
}

func TestSimpleMembershipStore_GetBranchBrandID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	store := NewSimpleMembershipStore(db)
	ctx := context.Background()

	t.Run("branch found", func(t *testing.T) {
		mock.ExpectQuery("SELECT brand_id FROM branches").
			WithArgs("branch-1").
			WillReturnRows(sqlmock.NewRows([]string{"brand_id"}).AddRow("brand-1"))

		brandID, err := store.GetBranchBrandID(ctx, "branch-1")
		if err != nil {
			t.Fatalf("GetBranchBrandID() error = %v", err)
		}
		if brandID != "brand-1" {
			t.Errorf("GetBranchBrandID() = %v, want brand-1", brandID)
		}
	})

	t.Run("branch missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT brand_id FROM branches").
			WithArgs("branch-404").
			WillReturnError(sql.ErrNoRows)

		_, err := store.GetBranchBrandID(ctx, "branch-404")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetBranchBrandID() error = %v, want ErrNotFound", err)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestResolverWithSQLStore(t *testing.T) {
	// The full resolver on top of the SQL adapter: a brand manager with no
	// branch row inherits staff authority through the three reads in order.
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	r := NewResolver(NewSimpleMembershipStore(db))
	ctx := context.Background()

	mock.ExpectQuery("SELECT id, role, status FROM branch_members").
		WithArgs("user-1", "branch-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("SELECT brand_id FROM branches").
		WithArgs("branch-1").
		WillReturnRows(sqlmock.NewRows([]string{"brand_id"}).AddRow("brand-1"))
	mock.ExpectQuery("SELECT id, role, status FROM brand_members").
		WithArgs("user-1", "brand-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "status"}).AddRow("m-1", "manager", "active"))

	got := r.Authorize(ctx, "user-1", BranchResource("branch-1"), ActionBranchOperate)
	if want := GrantedBranch(BranchRoleStaff); got != want {
		t.Errorf("Authorize() = %+v, want %+v", got, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
