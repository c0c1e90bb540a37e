//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_auth_service.go -package=mocks
package services

import (
	"fmt"
	"time"

	"chat-hub/auth"
	"chat-hub/errors"
	"chat-hub/repositories"
)

type IAuthService interface {
	Register(email, password string, name *string) (Token, error)
	Login(email, password string) (Token, error)
}

type Token string

type AuthService struct {
	userRepository    repositories.IUserRepository
	secret            []byte
	authTokenDuration time.Duration
}

func NewAuthService(repo repositories.IUserRepository, secret []byte,
	authTokenDuration time.Duration) IAuthService {
	return &AuthService{
		userRepository:    repo,
		secret:            secret,
		authTokenDuration: authTokenDuration,
	}
}

func (s *AuthService) Register(email, password string, name *string) (Token, error) {
	valReq := auth.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     name,
	}

	// 1. Validate business rules (email format, password complexity)
	// before any expensive cryptographic operation. Complexity failures
	// carry ErrInvalidPassword; other failures keep their validator
	// error so the caller can tell which field is wrong.
	if err := auth.ValidateRegister(valReq); err != nil {
		return "", err
	}

	// 2. Hash the password using Argon2id. Done in the service layer to
	// keep the repository unaware of plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	// 3. Persist the user with the generated hash.
	userID, err := s.userRepository.CreateUser(email, hashedPassword, name)
	if err != nil {
		return "", err // Propagates ErrUserAlreadyExists if the email is taken
	}

	// 4. Generate the initial session token.
	token, err := auth.GenerateToken(s.secret, userID, []string{"user"}, s.authTokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}

func (s *AuthService) Login(email, password string) (Token, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks.
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(s.secret, user.ID, user.Roles, s.authTokenDuration)
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	return Token(token), nil
}
