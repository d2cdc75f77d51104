package tests

import (
	"context"
	"testing"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func buildProdutoSvc() (service.ProdutoService, *stubProdutoRepo, *stubMovimentacaoRepo) {
	produtoRepo := newStubProdutoRepo()
	movRepo := newStubMovimentacaoRepo()
	estoque := service.NewEstoqueService(movRepo, produtoRepo, nil)
	svc := service.NewProdutoService(produtoRepo, movRepo, estoque)
	return svc, produtoRepo, movRepo
}

func reqProduto(nome string) dto.CriarProdutoRequest {
	return dto.CriarProdutoRequest{
		Nome:       nome,
		Categoria:  "mercearia",
		PrecoCusto: decimal.NewFromFloat(4.00),
		PrecoVenda: decimal.NewFromFloat(7.90),
	}
}

func TestCriarProdutoCodigoSequencial(t *testing.T) {
	svc, _, _ := buildProdutoSvc()
	ctx := context.Background()

	primeiro, err := svc.Criar(ctx, uuid.New(), reqProduto("Macarrão"))
	require.NoError(t, err)
	segundo, err := svc.Criar(ctx, uuid.New(), reqProduto("Molho"))
	require.NoError(t, err)

	assert.Equal(t, "000001", primeiro.Codigo)
	assert.Equal(t, "000002", segundo.Codigo)
	assert.True(t, primeiro.Ativo)
	assert.Equal(t, 0, primeiro.EstoqueAtual)
}

func TestCriarProdutoEstoqueInicialViraEntrada(t *testing.T) {
	svc, produtoRepo, movRepo := buildProdutoSvc()
	usuario := uuid.New()

	req := reqProduto("Biscoito")
	req.EstoqueInicial = 12
	resp, err := svc.Criar(context.Background(), usuario, req)
	require.NoError(t, err)

	assert.Equal(t, 12, resp.EstoqueAtual)
	pid := uuid.MustParse(resp.ID)
	assert.Equal(t, 12, produtoRepo.produtos[pid].EstoqueAtual)

	// O estoque inicial nasce como lançamento de entrada no ledger, nunca
	// como escrita direta no cadastro.
	require.Len(t, movRepo.movs, 1)
	for _, m := range movRepo.movs {
		assert.Equal(t, model.MovimentacaoEntrada, m.Tipo)
		assert.Equal(t, 12, m.Quantidade)
		assert.Equal(t, 0, m.EstoqueAnterior)
		assert.Equal(t, 12, m.EstoqueNovo)
		assert.Equal(t, usuario, m.UsuarioID)
	}
}

func TestCriarProdutoCodigoBarrasDuplicado(t *testing.T) {
	svc, _, _ := buildProdutoSvc()
	ctx := context.Background()
	barras := "7891234567890"

	req := reqProduto("Refrigerante")
	req.CodigoBarras = &barras
	_, err := svc.Criar(ctx, uuid.New(), req)
	require.NoError(t, err)

	outro := reqProduto("Suco")
	outro.CodigoBarras = &barras
	_, err = svc.Criar(ctx, uuid.New(), outro)
	assert.ErrorIs(t, err, service.ErrValidacao)
}

// Dois cadastros disputando o mesmo codigo colidem no índice único; a camada
// de serviço devolve erro de domínio, nunca o erro cru do banco.
func TestCriarProdutoColisaoDeCodigoViraValidacao(t *testing.T) {
	svc, produtoRepo, _ := buildProdutoSvc()
	produtoRepo.falhaCreate = gorm.ErrDuplicatedKey

	_, err := svc.Criar(context.Background(), uuid.New(), reqProduto("Vela"))
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidacao)
	assert.Empty(t, produtoRepo.produtos)
}

func TestCriarProdutoValidacoes(t *testing.T) {
	svc, _, _ := buildProdutoSvc()
	ctx := context.Background()

	req := reqProduto("Inválido")
	req.PrecoVenda = decimal.NewFromFloat(-1)
	_, err := svc.Criar(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, service.ErrValidacao)

	req = reqProduto("Inválido")
	req.EstoqueInicial = -5
	_, err = svc.Criar(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, service.ErrValidacao)

	req = reqProduto("Inválido")
	fid := "não-é-uuid"
	req.FornecedorID = &fid
	_, err = svc.Criar(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, service.ErrValidacao)
}

func TestObterPorCodigoBarras(t *testing.T) {
	svc, _, _ := buildProdutoSvc()
	ctx := context.Background()
	barras := "7899876543210"

	req := reqProduto("Chocolate")
	req.CodigoBarras = &barras
	criado, err := svc.Criar(ctx, uuid.New(), req)
	require.NoError(t, err)

	resp, err := svc.ObterPorCodigoBarras(ctx, barras)
	require.NoError(t, err)
	assert.Equal(t, criado.ID, resp.ID)

	_, err = svc.ObterPorCodigoBarras(ctx, "0000000000000")
	assert.ErrorIs(t, err, service.ErrProdutoNaoEncontrado)
}

func TestAtualizarProduto(t *testing.T) {
	svc, _, _ := buildProdutoSvc()
	ctx := context.Background()

	criado, err := svc.Criar(ctx, uuid.New(), reqProduto("Margarina"))
	require.NoError(t, err)
	pid := uuid.MustParse(criado.ID)

	nome := "Margarina 500g"
	preco := decimal.NewFromFloat(9.50)
	minimo := 4
	resp, err := svc.Atualizar(ctx, pid, dto.AtualizarProdutoRequest{
		Nome:       &nome,
		PrecoVenda: &preco,
		EstoqueMin: &minimo,
	})
	require.NoError(t, err)
	assert.Equal(t, nome, resp.Nome)
	assert.True(t, resp.PrecoVenda.Equal(preco))
	assert.Equal(t, 4, resp.EstoqueMin)
	// O código sequencial é imutável.
	assert.Equal(t, criado.Codigo, resp.Codigo)

	negativo := decimal.NewFromFloat(-2)
	_, err = svc.Atualizar(ctx, pid, dto.AtualizarProdutoRequest{PrecoVenda: &negativo})
	assert.ErrorIs(t, err, service.ErrValidacao)

	_, err = svc.Atualizar(ctx, uuid.New(), dto.AtualizarProdutoRequest{Nome: &nome})
	assert.ErrorIs(t, err, service.ErrProdutoNaoEncontrado)
}

func TestDesativarEReativar(t *testing.T) {
	svc, produtoRepo, _ := buildProdutoSvc()
	ctx := context.Background()

	criado, err := svc.Criar(ctx, uuid.New(), reqProduto("Vinagre"))
	require.NoError(t, err)
	pid := uuid.MustParse(criado.ID)

	require.NoError(t, svc.Desativar(ctx, pid))
	assert.False(t, produtoRepo.produtos[pid].Ativo)

	require.NoError(t, svc.Reativar(ctx, pid))
	assert.True(t, produtoRepo.produtos[pid].Ativo)

	assert.ErrorIs(t, svc.Desativar(ctx, uuid.New()), service.ErrProdutoNaoEncontrado)
}

func TestExcluirSemHistorico(t *testing.T) {
	svc, produtoRepo, _ := buildProdutoSvc()
	ctx := context.Background()

	criado, err := svc.Criar(ctx, uuid.New(), reqProduto("Mostarda"))
	require.NoError(t, err)
	pid := uuid.MustParse(criado.ID)

	require.NoError(t, svc.Excluir(ctx, pid))
	assert.NotContains(t, produtoRepo.produtos, pid)

	_, err = svc.ObterPorID(ctx, pid)
	assert.ErrorIs(t, err, service.ErrProdutoNaoEncontrado)
}

func TestExcluirComHistoricoRecusado(t *testing.T) {
	svc, produtoRepo, _ := buildProdutoSvc()
	ctx := context.Background()

	req := reqProduto("Ketchup")
	req.EstoqueInicial = 3 // gera uma movimentação
	criado, err := svc.Criar(ctx, uuid.New(), req)
	require.NoError(t, err)
	pid := uuid.MustParse(criado.ID)

	err = svc.Excluir(ctx, pid)
	assert.ErrorIs(t, err, service.ErrValidacao)
	assert.Contains(t, produtoRepo.produtos, pid)

	// O caminho certo para tirar de linha é a desativação.
	require.NoError(t, svc.Desativar(ctx, pid))
	assert.False(t, produtoRepo.produtos[pid].Ativo)
}
