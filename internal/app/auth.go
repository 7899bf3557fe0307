package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"stayhub/internal/domain"
)

// TokenIssuer is the signing half of the external token service.
type TokenIssuer interface {
	Issue(userID string, role domain.Role) (string, error)
}

type AuthService struct {
	store  domain.Store
	tokens TokenIssuer
	cost   int
}

func NewAuthService(store domain.Store, tokens TokenIssuer, bcryptCost int) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{store: store, tokens: tokens, cost: bcryptCost}
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role // empty means customer
	Phone    *string
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	u := domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(in.Email),
		Name:         in.Name,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        in.Phone,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Login verifies credentials and returns a signed bearer token plus the user.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, domain.User, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.User{}, domain.E(domain.CodeInvalidCredentials)
		}
		return "", domain.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", domain.User{}, domain.E(domain.CodeInvalidCredentials)
	}
	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return "", domain.User{}, err
	}
	return tok, u, nil
}
