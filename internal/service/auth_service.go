package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/config"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/middleware"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	CriarUsuario(ctx context.Context, req dto.CriarUsuarioRequest) (*dto.UsuarioInfo, error)
	ListarUsuarios(ctx context.Context) ([]dto.UsuarioInfo, error)
	DesativarUsuario(ctx context.Context, id uuid.UUID) error
}

type authService struct {
	repo repository.UsuarioRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.New("credenciais inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.New("credenciais inválidas")
	}

	accessToken, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.JWTExpirationHours * 3600,
		Usuario: dto.UsuarioInfo{
			ID:       user.ID.String(),
			Username: user.Username,
			Nome:     user.Nome,
			Papel:    user.Papel,
		},
	}, nil
}

func (s *authService) CriarUsuario(ctx context.Context, req dto.CriarUsuarioRequest) (*dto.UsuarioInfo, error) {
	if _, err := s.repo.FindByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username %s já existe", ErrValidacao, req.Username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
	if err != nil {
		return nil, err
	}
	user := &model.Usuario{
		Username:     req.Username,
		Nome:         req.Nome,
		Email:        req.Email,
		PasswordHash: string(hash),
		Papel:        req.Papel,
		Ativo:        true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return &dto.UsuarioInfo{
		ID:       user.ID.String(),
		Username: user.Username,
		Nome:     user.Nome,
		Papel:    user.Papel,
	}, nil
}

func (s *authService) ListarUsuarios(ctx context.Context) ([]dto.UsuarioInfo, error) {
	usuarios, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]dto.UsuarioInfo, 0, len(usuarios))
	for idx := range usuarios {
		u := &usuarios[idx]
		infos = append(infos, dto.UsuarioInfo{
			ID:       u.ID.String(),
			Username: u.Username,
			Nome:     u.Nome,
			Papel:    u.Papel,
		})
	}
	return infos, nil
}

func (s *authService) DesativarUsuario(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *authService) generateToken(user *model.Usuario, ttl time.Duration) (string, error) {
	claims := middleware.JWTClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Papel:    user.Papel,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
