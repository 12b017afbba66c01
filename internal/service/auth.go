package service

import (
	"context"
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"example.com/marketplace/internal/model"
	"example.com/marketplace/internal/store"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uint       `json:"id"`
	Role   model.Role `json:"role"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Role     string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (model.User, error)
	Login(ctx context.Context, email, password string) (string, model.User, error) // returns JWT
	ParseToken(token string) (Principal, error)
}

type AuthConfig struct {
	Secret                 []byte
	TokenTTL               time.Duration
	AllowAdminRegistration bool
}

type authService struct {
	db  *gorm.DB
	cfg AuthConfig
}

func NewAuthService(db *gorm.DB, cfg AuthConfig) AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	return &authService{db: db, cfg: cfg}
}

type sessionClaims struct {
	Role model.Role `json:"role"`
	Typ  string     `json:"typ"`
	jwt.RegisteredClaims
}

// ---------------------------------------------------
// Register
// ---------------------------------------------------

func (a *authService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return model.User{}, invalidArg("invalid email")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.User{}, invalidArg("name is required")
	}
	if len(in.Password) < 6 {
		return model.User{}, invalidArg("password must be at least 6 characters")
	}

	users := store.NewUsers(a.db)
	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return model.User{}, newErr(ErrConflict, "email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}
	u := model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         a.requestedRole(in.Role),
		Active:       true,
	}
	if err := users.Create(ctx, &u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.User{}, newErr(ErrConflict, "email already registered")
		}
		return model.User{}, err
	}
	return u, nil
}

// requestedRole grants SELLER on request; ADMIN only when admin
// self-registration is enabled. Anything else becomes USER.
func (a *authService) requestedRole(raw string) model.Role {
	r := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "ROLE_")
	switch model.Role(r) {
	case model.RoleSeller:
		return model.RoleSeller
	case model.RoleAdmin:
		if a.cfg.AllowAdminRegistration {
			return model.RoleAdmin
		}
	}
	return model.RoleUser
}

// ---------------------------------------------------
// Login
// ---------------------------------------------------

func (a *authService) Login(ctx context.Context, email, password string) (string, model.User, error) {
	u, err := store.NewUsers(a.db).FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", model.User{}, newErr(ErrUnauthorized, "invalid credentials")
	}
	if err != nil {
		return "", model.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", model.User{}, newErr(ErrUnauthorized, "invalid credentials")
	}
	if !u.Active {
		return "", model.User{}, newErr(ErrForbidden, "user disabled")
	}

	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Role: u.Role,
		Typ:  "session",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.TokenTTL)),
		},
	})
	tok, err := t.SignedString(a.cfg.Secret)
	if err != nil {
		return "", model.User{}, err
	}
	return tok, u, nil
}

// ---------------------------------------------------
// ParseToken
// ---------------------------------------------------

func (a *authService) ParseToken(token string) (Principal, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, newErr(ErrUnauthorized, "invalid session")
	}
	if claims.Typ != "session" {
		return Principal{}, newErr(ErrUnauthorized, "invalid token type")
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return Principal{}, newErr(ErrUnauthorized, "invalid sub")
	}
	return Principal{UserID: uint(id), Role: claims.Role}, nil
}
