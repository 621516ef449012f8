package user

import (
	"context"
	"errors"
	"testing"

	"agroMarket/domain"

	"github.com/go-playground/validator/v10"
)

type fakeUserRepo struct {
	users     map[uint]domain.User
	nextID    uint
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEmail
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (f *fakeUserRepo) FindNonAdmins(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.Role != domain.RoleAdmin {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) DeleteNonAdmin(_ context.Context, id uint) (int64, error) {
	u, ok := f.users[id]
	if !ok || u.Role == domain.RoleAdmin {
		return 0, nil
	}
	delete(f.users, id)
	return 1, nil
}

type fakeRevoker struct {
	revoked []uint
	err     error
}

func (f *fakeRevoker) DeleteUserSessions(_ context.Context, userID uint) error {
	f.revoked = append(f.revoked, userID)
	return f.err
}

func newService(repo *fakeUserRepo) *userService {
	return NewUserService(repo, &fakeRevoker{}, validator.New())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newService(repo)
	ctx := context.Background()

	in := RegisterInput{Username: "sari", Email: "sari@farm.id", Whatsapp: "0812", Password: "secret1", Role: "farmer"}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatalf("first register: %v", err)
	}

	in.Username = "other"
	in.Email = "SARI@farm.id"
	_, err := svc.Register(ctx, in)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
	if len(repo.users) != 1 {
		t.Errorf("users = %d, want 1", len(repo.users))
	}
}

func TestRegisterStoresHashNotPlaintext(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newService(repo)

	u, err := svc.Register(context.Background(), RegisterInput{
		Username: "budi", Email: "budi@mail.id", Password: "plaintext", Role: "customer",
	})
	if err != nil {
		t.Fatal(err)
	}

	stored := repo.users[u.ID]
	if stored.Password == "plaintext" || stored.Password == "" {
		t.Errorf("stored password %q is not a hash", stored.Password)
	}
	if u.Password != "" {
		t.Error("returned user leaks password hash")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(newFakeUserRepo())

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "secret1", Role: "customer"}},
		{"short password", RegisterInput{Email: "a@b.id", Password: "123", Role: "customer"}},
		{"admin role", RegisterInput{Email: "a@b.id", Password: "secret1", Role: "admin"}},
		{"unknown role", RegisterInput{Email: "a@b.id", Password: "secret1", Role: "wizard"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.in); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "sari", Email: "sari@farm.id", Password: "secret1", Role: "farmer"}); err != nil {
		t.Fatal(err)
	}

	u, err := svc.Authenticate(ctx, "sari@farm.id", "secret1")
	if err != nil {
		t.Fatalf("valid login: %v", err)
	}
	if u.Role != domain.RoleFarmer {
		t.Errorf("role = %q", u.Role)
	}

	if _, err := svc.Authenticate(ctx, "sari@farm.id", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost@farm.id", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("unknown email err = %v", err)
	}
}

func TestDeleteUserProtectsAdmin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newService(repo)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "root", "admin@agro.id", "adminpass"); err != nil {
		t.Fatal(err)
	}
	admin, _ := repo.FindByEmail(ctx, "admin@agro.id")

	err := svc.DeleteUser(ctx, admin.ID)
	if !errors.Is(err, domain.ErrProtectedUser) {
		t.Fatalf("err = %v, want ErrProtectedUser", err)
	}
	if _, err := repo.FindByID(ctx, admin.ID); err != nil {
		t.Error("admin row removed")
	}

	farmer, _ := svc.Register(ctx, RegisterInput{Username: "f", Email: "f@farm.id", Password: "secret1", Role: "farmer"})
	if err := svc.DeleteUser(ctx, farmer.ID); err != nil {
		t.Fatalf("delete farmer: %v", err)
	}
	if _, err := repo.FindByID(ctx, farmer.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Error("farmer still present")
	}
}

func TestDeleteUserRevokesSessions(t *testing.T) {
	repo := newFakeUserRepo()
	sessions := &fakeRevoker{}
	svc := NewUserService(repo, sessions, validator.New())
	ctx := context.Background()

	farmer, _ := svc.Register(ctx, RegisterInput{Username: "f", Email: "f@farm.id", Password: "secret1", Role: "farmer"})
	if err := svc.DeleteUser(ctx, farmer.ID); err != nil {
		t.Fatalf("delete farmer: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != farmer.ID {
		t.Fatalf("sessions not revoked: %+v", sessions.revoked)
	}

	if _, err := svc.Register(ctx, RegisterInput{Username: "f2", Email: "f@farm.id", Password: "secret1", Role: "customer"}); err != nil {
		t.Fatalf("register after delete: %v", err)
	}

	admin := domain.User{Username: "root", Email: "root@agro.id", Role: domain.RoleAdmin}
	_ = repo.Create(ctx, &admin)
	_ = svc.DeleteUser(ctx, admin.ID)
	if len(sessions.revoked) != 1 {
		t.Fatal("protected admin had sessions revoked")
	}
}

func TestDeleteUserReportsRevokeFailure(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &fakeRevoker{err: errors.New("redis down")}, validator.New())
	ctx := context.Background()

	farmer, _ := svc.Register(ctx, RegisterInput{Username: "f", Email: "f@farm.id", Password: "secret1", Role: "farmer"})
	if err := svc.DeleteUser(ctx, farmer.ID); err == nil {
		t.Fatal("expected revoke failure to surface")
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newService(repo)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := svc.EnsureAdmin(ctx, "root", "admin@agro.id", "adminpass"); err != nil {
			t.Fatal(err)
		}
	}
	if len(repo.users) != 1 {
		t.Errorf("users = %d, want 1", len(repo.users))
	}
}
