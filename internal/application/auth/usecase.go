package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/jwt"
)

const minPasswordLength = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// UseCase casos de uso de autenticación: registro y login.
type UseCase struct {
	users      repository.UserRepository
	categories repository.CategoryRepository
	jwtCfg     JWTConfig
	now        func() time.Time
}

// NewUseCase construye el caso de uso de auth.
func NewUseCase(users repository.UserRepository, categories repository.CategoryRepository, jwtCfg JWTConfig, now func() time.Time) *UseCase {
	if now == nil {
		now = time.Now
	}
	return &UseCase{users: users, categories: categories, jwtCfg: jwtCfg, now: now}
}

// Register crea un usuario: hashea el password con bcrypt y persiste. Un usuario scoped debe
// indicar un rubro existente; un admin no lleva rubro.
func (uc *UseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	ve := &domain.ValidationError{}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		ve.AddField("email", domain.CodeInvalidValue, "email inválido")
	}
	if len(in.Password) < minPasswordLength {
		ve.AddField("password", domain.CodeInvalidValue, fmt.Sprintf("el password debe tener al menos %d caracteres", minPasswordLength))
	}
	role := in.Role
	if role == "" {
		role = entity.RoleScoped
	}
	var categoryID *string
	switch role {
	case entity.RoleAdmin:
	case entity.RoleScoped:
		if in.CategoryID == nil || *in.CategoryID == "" {
			ve.AddField("category_id", domain.CodeRequired, "el rubro es obligatorio para usuarios scoped")
			break
		}
		c, err := uc.categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			ve.AddField("category_id", domain.CodeCategoryNotFound, "el rubro no existe")
			break
		}
		categoryID = &c.ID
	default:
		ve.AddField("role", domain.CodeInvalidValue, "rol inválido")
	}
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s: %w", email, domain.ErrDuplicate)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		CategoryID:   categoryID,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return toUserResponse(user), nil
}

// Login verifica email/password, genera el JWT con el alcance del usuario y retorna token + usuario.
// Email inexistente y password incorrecto devuelven el mismo error.
func (uc *UseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	categoryID := ""
	if user.CategoryID != nil {
		categoryID = *user.CategoryID
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Role, categoryID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// Me devuelve el usuario autenticado.
func (uc *UseCase) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return toUserResponse(user), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		CategoryID: u.CategoryID,
		Status:     u.Status,
		CreatedAt:  u.CreatedAt,
	}
}
