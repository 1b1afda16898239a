package service

import (
	"alcyxob/fitplanhub/internal/domain"
	"alcyxob/fitplanhub/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "fitplanhub"

// Claims is the JWT payload issued at login and checked by the auth middleware.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Role           domain.Role
	Certifications string
}

// Profile is the caller's own account plus the trainers they follow.
type Profile struct {
	User             *domain.User
	FollowedTrainers []domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (token string, user *domain.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	Profile(ctx context.Context, userID primitive.ObjectID) (*Profile, error)
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	followRepo    repository.FollowRepository
	jwtSecret     string
	jwtExpiration time.Duration
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, followRepo repository.FollowRepository, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 7 * 24 * time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		followRepo:    followRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		now:           time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the account and logs it in.
func (s *authService) Register(ctx context.Context, in RegisterInput) (string, *domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return "", nil, validationError("name, email and password are required")
	}
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	if !in.Role.Valid() {
		return "", nil, validationError("role must be one of %s, %s", domain.RoleUser, domain.RoleTrainer)
	}

	_, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err == nil {
		return "", nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", nil, internalError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, &Error{Kind: KindInternal, Message: ErrHashingFailed.Message, Err: err}
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Role:         in.Role,
	}
	// certifications only mean something for trainers
	if in.Role == domain.RoleTrainer {
		user.Certifications = strings.TrimSpace(in.Certifications)
	}

	if _, err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race against another registration with the same email
		if errors.Is(err, repository.ErrDuplicate) {
			return "", nil, ErrUserAlreadyExists
		}
		return "", nil, internalError(err)
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, &Error{Kind: KindInternal, Message: ErrTokenGeneration.Message, Err: err}
	}
	user.PasswordHash = ""
	return token, user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, validationError("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, internalError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return "", nil, &Error{Kind: KindInternal, Message: ErrTokenGeneration.Message, Err: err}
	}
	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) Profile(ctx context.Context, userID primitive.ObjectID) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internalError(err)
	}
	user.PasswordHash = ""

	trainerIDs, err := s.followRepo.TrainerIDsFollowedBy(ctx, userID)
	if err != nil {
		return nil, internalError(err)
	}
	trainers := []domain.User{}
	if len(trainerIDs) > 0 {
		if trainers, err = s.userRepo.GetByIDs(ctx, trainerIDs); err != nil {
			return nil, internalError(err)
		}
		stripPasswords(trainers)
	}
	return &Profile{User: user, FollowedTrainers: trainers}, nil
}

// ParseToken validates signature, algorithm and expiry of a token signed with
// secret and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, errors.New("invalid token or missing claims")
	}
	return claims, nil
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
