package tests

import (
	"context"
	"testing"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/config"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/middleware"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/repository"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stub UsuarioRepository em memória ────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Ativo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var result []model.Usuario
	for _, u := range r.usuarios {
		result = append(result, *u)
	}
	return result, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.usuarios[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if u, ok := r.usuarios[id]; ok {
		u.Ativo = false
	}
	return nil
}

// ── Autenticação ─────────────────────────────────────────────────────────────

func buildAuthSvc() (service.AuthService, *stubUsuarioRepo, *config.Config) {
	repo := newStubUsuarioRepo()
	cfg := &config.Config{JWTSecret: "segredo-de-teste", JWTExpirationHours: 8}
	return service.NewAuthService(repo, cfg), repo, cfg
}

func criarOperador(t *testing.T, svc service.AuthService, username, senha, papel string) *dto.UsuarioInfo {
	t.Helper()
	info, err := svc.CriarUsuario(context.Background(), dto.CriarUsuarioRequest{
		Username: username,
		Nome:     "Usuário de Teste",
		Password: senha,
		Papel:    papel,
	})
	require.NoError(t, err)
	return info
}

func TestLoginEmiteTokenComPapel(t *testing.T) {
	svc, _, cfg := buildAuthSvc()
	ctx := context.Background()
	criarOperador(t, svc, "joana", "senha123", "gerente")

	resp, err := svc.Login(ctx, dto.LoginRequest{Username: "joana", Password: "senha123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "gerente", resp.Usuario.Papel)

	// O token carrega as claims que o middleware de autorização consome.
	var claims middleware.JWTClaims
	token, err := jwt.ParseWithClaims(resp.AccessToken, &claims, func(_ *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "joana", claims.Username)
	assert.Equal(t, "gerente", claims.Papel)
	assert.Equal(t, resp.Usuario.ID, claims.UserID)
}

func TestLoginSenhaErrada(t *testing.T) {
	svc, _, _ := buildAuthSvc()
	criarOperador(t, svc, "carlos", "senha123", "operador")

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "carlos", Password: "outra"})
	assert.Error(t, err)
}

func TestLoginUsuarioDesconhecido(t *testing.T) {
	svc, _, _ := buildAuthSvc()
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ninguem", Password: "x"})
	assert.Error(t, err)
}

func TestLoginUsuarioDesativado(t *testing.T) {
	svc, _, _ := buildAuthSvc()
	ctx := context.Background()
	info := criarOperador(t, svc, "paula", "senha123", "operador")

	require.NoError(t, svc.DesativarUsuario(ctx, uuid.MustParse(info.ID)))

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "paula", Password: "senha123"})
	assert.Error(t, err)
}

func TestCriarUsuarioDuplicado(t *testing.T) {
	svc, _, _ := buildAuthSvc()
	criarOperador(t, svc, "repetido", "senha123", "operador")

	_, err := svc.CriarUsuario(context.Background(), dto.CriarUsuarioRequest{
		Username: "repetido",
		Nome:     "Outro",
		Password: "senha456",
		Papel:    "operador",
	})
	assert.ErrorIs(t, err, service.ErrValidacao)
}

func TestCriarUsuarioNaoVazaHash(t *testing.T) {
	svc, repo, _ := buildAuthSvc()
	info := criarOperador(t, svc, "sigilo", "senha123", "administrador")

	u := repo.usuarios[uuid.MustParse(info.ID)]
	require.NotNil(t, u)
	assert.NotEqual(t, "senha123", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)
}
