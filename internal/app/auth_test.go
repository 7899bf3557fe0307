package app

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"stayhub/internal/domain"
	"stayhub/internal/storage/memstore"
)

type fakeIssuer struct{}

func (fakeIssuer) Issue(userID string, role domain.Role) (string, error) {
	return "tok-" + userID + "-" + string(role), nil
}

func newAuthFixture() *AuthService {
	return NewAuthService(memstore.New(), fakeIssuer{}, bcrypt.MinCost)
}

func TestSignup_Defaults(t *testing.T) {
	svc := newAuthFixture()

	u, err := svc.Signup(context.Background(), SignupInput{
		Name: "Ana Costa", Email: "Ana@Example.COM", Password: "sup3r-secret",
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if u.Email != "ana@example.com" {
		t.Fatalf("email not lowercased: %s", u.Email)
	}
	if u.Role != domain.RoleCustomer {
		t.Fatalf("role not defaulted: %s", u.Role)
	}
	if u.PasswordHash == "sup3r-secret" || u.PasswordHash == "" {
		t.Fatalf("password stored badly")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("sup3r-secret")) != nil {
		t.Fatalf("hash does not verify")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()

	in := SignupInput{Name: "Ana", Email: "ana@example.com", Password: "sup3r-secret"}
	if _, err := svc.Signup(ctx, in); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	// same address, different case
	in.Email = "ANA@example.com"
	_, err := svc.Signup(ctx, in)
	wantCode(t, err, domain.CodeEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	svc := newAuthFixture()
	ctx := context.Background()

	u, err := svc.Signup(ctx, SignupInput{
		Name: "Omar", Email: "omar@example.com", Password: "sup3r-secret", Role: domain.RoleOwner,
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	tok, got, err := svc.Login(ctx, "Omar@Example.com", "sup3r-secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != u.ID || tok != "tok-"+u.ID+"-owner" {
		t.Fatalf("unexpected login result: %s %+v", tok, got)
	}

	_, _, err = svc.Login(ctx, "omar@example.com", "wrong-password")
	wantCode(t, err, domain.CodeInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "sup3r-secret")
	wantCode(t, err, domain.CodeInvalidCredentials)
}
