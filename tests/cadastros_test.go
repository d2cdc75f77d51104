package tests

import (
	"context"
	"testing"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/repository"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stub CategoriaRepository em memória ──────────────────────────────────────

type stubCategoriaRepo struct {
	categorias map[uuid.UUID]*model.Categoria
}

func newStubCategoriaRepo() *stubCategoriaRepo {
	return &stubCategoriaRepo{categorias: make(map[uuid.UUID]*model.Categoria)}
}

var _ repository.CategoriaRepository = (*stubCategoriaRepo)(nil)

func (r *stubCategoriaRepo) Create(_ context.Context, c *model.Categoria) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Categoria, error) {
	c, ok := r.categorias[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCategoriaRepo) FindByNome(_ context.Context, nome string) (*model.Categoria, error) {
	for _, c := range r.categorias {
		if c.Nome == nome && c.Ativo {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoriaRepo) List(_ context.Context) ([]model.Categoria, error) {
	var result []model.Categoria
	for _, c := range r.categorias {
		if c.Ativo {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *stubCategoriaRepo) Update(_ context.Context, c *model.Categoria) error {
	r.categorias[c.ID] = c
	return nil
}

func (r *stubCategoriaRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if c, ok := r.categorias[id]; ok {
		c.Ativo = false
	}
	return nil
}

// ── Categorias ───────────────────────────────────────────────────────────────

func TestCriarCategoriaComCamposExtras(t *testing.T) {
	svc := service.NewCategoriaService(newStubCategoriaRepo())

	resp, err := svc.Criar(context.Background(), dto.CriarCategoriaRequest{
		Nome:         "Eletrônicos",
		CamposExtras: map[string]string{"voltagem": "Voltagem", "cor": "Cor"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Eletrônicos", resp.Nome)
	assert.Equal(t, "Voltagem", resp.CamposExtras["voltagem"])
	assert.True(t, resp.Ativo)
}

func TestCriarCategoriaNomeDuplicado(t *testing.T) {
	svc := service.NewCategoriaService(newStubCategoriaRepo())
	ctx := context.Background()

	_, err := svc.Criar(ctx, dto.CriarCategoriaRequest{Nome: "Bebidas"})
	require.NoError(t, err)

	_, err = svc.Criar(ctx, dto.CriarCategoriaRequest{Nome: "Bebidas"})
	assert.ErrorIs(t, err, service.ErrValidacao)
}

func TestCategoriaDesativadaLiberaNome(t *testing.T) {
	repo := newStubCategoriaRepo()
	svc := service.NewCategoriaService(repo)
	ctx := context.Background()

	criada, err := svc.Criar(ctx, dto.CriarCategoriaRequest{Nome: "Sazonais"})
	require.NoError(t, err)
	require.NoError(t, svc.Desativar(ctx, uuid.MustParse(criada.ID)))

	_, err = svc.Criar(ctx, dto.CriarCategoriaRequest{Nome: "Sazonais"})
	assert.NoError(t, err)
}

func TestObterCategoriaInexistente(t *testing.T) {
	svc := service.NewCategoriaService(newStubCategoriaRepo())
	_, err := svc.ObterPorID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, service.ErrCategoriaNaoEncontrada)
}

// ── Clientes ─────────────────────────────────────────────────────────────────

func TestCriarEAtualizarCliente(t *testing.T) {
	svc := service.NewClienteService(newStubClienteRepo())
	ctx := context.Background()

	criado, err := svc.Criar(ctx, dto.CriarClienteRequest{
		Nome:          "Seu João",
		LimiteCredito: decimal.NewFromFloat(200.00),
	})
	require.NoError(t, err)
	assert.True(t, criado.LimiteCredito.Equal(decimal.NewFromFloat(200.00)))

	limite := decimal.NewFromFloat(350.00)
	telefone := "(11) 98888-7777"
	resp, err := svc.Atualizar(ctx, uuid.MustParse(criado.ID), dto.AtualizarClienteRequest{
		LimiteCredito: &limite,
		Telefone:      &telefone,
	})
	require.NoError(t, err)
	assert.True(t, resp.LimiteCredito.Equal(limite))
	require.NotNil(t, resp.Telefone)
	assert.Equal(t, telefone, *resp.Telefone)
}

func TestClienteNaoEncontrado(t *testing.T) {
	svc := service.NewClienteService(newStubClienteRepo())
	ctx := context.Background()

	_, err := svc.ObterPorID(ctx, uuid.New())
	assert.ErrorIs(t, err, service.ErrClienteNaoEncontrado)

	nome := "Qualquer"
	_, err = svc.Atualizar(ctx, uuid.New(), dto.AtualizarClienteRequest{Nome: &nome})
	assert.ErrorIs(t, err, service.ErrClienteNaoEncontrado)
}

func TestListarClientesSoAtivos(t *testing.T) {
	repo := newStubClienteRepo()
	svc := service.NewClienteService(repo)
	ctx := context.Background()

	ativo, err := svc.Criar(ctx, dto.CriarClienteRequest{Nome: "Ativa"})
	require.NoError(t, err)
	inativo, err := svc.Criar(ctx, dto.CriarClienteRequest{Nome: "Inativa"})
	require.NoError(t, err)
	require.NoError(t, svc.Desativar(ctx, uuid.MustParse(inativo.ID)))

	lista, err := svc.Listar(ctx, "")
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.Equal(t, ativo.ID, lista[0].ID)
}
