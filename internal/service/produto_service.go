package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProdutoService cobre o cadastro. O estoque em si não é editável por aqui:
// correção de estoque é uma movimentação (EstoqueService), o que mantém o
// ledger como única fonte de mutação.
type ProdutoService interface {
	Criar(ctx context.Context, usuarioID uuid.UUID, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error)
	ObterPorCodigoBarras(ctx context.Context, codigo string) (*dto.ProdutoResponse, error)
	Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error)
	ListarVencendo(ctx context.Context) ([]dto.ProdutoResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
	Reativar(ctx context.Context, id uuid.UUID) error
	Excluir(ctx context.Context, id uuid.UUID) error
}

type produtoService struct {
	repo    repository.ProdutoRepository
	movRepo repository.MovimentacaoRepository
	estoque EstoqueService
}

func NewProdutoService(
	repo repository.ProdutoRepository,
	movRepo repository.MovimentacaoRepository,
	estoque EstoqueService,
) ProdutoService {
	return &produtoService{repo: repo, movRepo: movRepo, estoque: estoque}
}

// Criar registra o produto com código sequencial zero-padded. O estoque
// inicial entra como uma movimentação de entrada, não como escrita direta —
// assim o invariante do ledger vale desde o primeiro dia do produto.
func (s *produtoService) Criar(ctx context.Context, usuarioID uuid.UUID, req dto.CriarProdutoRequest) (*dto.ProdutoResponse, error) {
	if req.PrecoCusto.IsNegative() || req.PrecoVenda.IsNegative() {
		return nil, fmt.Errorf("%w: preços não podem ser negativos", ErrValidacao)
	}
	if req.EstoqueInicial < 0 || req.EstoqueMin < 0 {
		return nil, fmt.Errorf("%w: estoque não pode ser negativo", ErrValidacao)
	}
	// Validação branda: vender abaixo do custo só gera aviso.
	if req.PrecoVenda.LessThan(req.PrecoCusto) {
		log.Warn().
			Str("produto", req.Nome).
			Str("preco_custo", req.PrecoCusto.StringFixed(2)).
			Str("preco_venda", req.PrecoVenda.StringFixed(2)).
			Msg("preço de venda abaixo do custo")
	}

	if req.CodigoBarras != nil && *req.CodigoBarras != "" {
		if _, err := s.repo.FindByCodigoBarras(ctx, *req.CodigoBarras); err == nil {
			return nil, fmt.Errorf("%w: código de barras %s já cadastrado", ErrValidacao, *req.CodigoBarras)
		}
	}

	var fornecedorID *uuid.UUID
	if req.FornecedorID != nil {
		fid, err := uuid.Parse(*req.FornecedorID)
		if err != nil {
			return nil, fmt.Errorf("%w: fornecedor_id inválido", ErrValidacao)
		}
		fornecedorID = &fid
	}

	var dataValidade *time.Time
	if req.DataValidade != nil {
		t, err := time.Parse("2006-01-02", *req.DataValidade)
		if err != nil {
			return nil, fmt.Errorf("%w: data_validade inválida", ErrValidacao)
		}
		dataValidade = &t
	}

	unidade := req.UnidadeMedida
	if unidade == "" {
		unidade = "unidade"
	}

	p := &model.Produto{
		CodigoBarras:       req.CodigoBarras,
		Nome:               req.Nome,
		Descricao:          req.Descricao,
		Categoria:          req.Categoria,
		PrecoCusto:         req.PrecoCusto,
		PrecoVenda:         req.PrecoVenda,
		EstoqueAtual:       0,
		EstoqueMin:         req.EstoqueMin,
		UnidadeMedida:      unidade,
		FornecedorID:       fornecedorID,
		Atributos:          req.Atributos,
		TemValidade:        req.TemValidade,
		DataValidade:       dataValidade,
		DiasAlertaValidade: req.DiasAlertaValidade,
		Ativo:              true,
	}

	// Reserva do código e INSERT na mesma transação: cadastros concorrentes
	// serializam na reserva em vez de colidir no índice único de codigo.
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		seq, err := s.repo.ProximoCodigo(ctx, tx)
		if err != nil {
			return err
		}
		p.Codigo = fmt.Sprintf("%06d", seq)
		return s.repo.CreateTx(tx, p)
	})
	if txErr != nil {
		if errors.Is(txErr, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: código ou código de barras já cadastrado", ErrValidacao)
		}
		return nil, txErr
	}

	if req.EstoqueInicial > 0 {
		_, err := s.estoque.RegistrarMovimentacao(ctx, usuarioID, dto.RegistrarMovimentacaoRequest{
			ProdutoID:  p.ID.String(),
			Tipo:       model.MovimentacaoEntrada,
			Quantidade: req.EstoqueInicial,
			Observacao: "Estoque inicial do cadastro",
		})
		if err != nil {
			return nil, fmt.Errorf("estoque inicial: %w", err)
		}
		p.EstoqueAtual = req.EstoqueInicial
	}

	log.Info().Str("produto_id", p.ID.String()).Str("codigo", p.Codigo).Msg("produto criado")
	return produtoToResponse(p), nil
}

func (s *produtoService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProdutoNaoEncontrado
		}
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) ObterPorCodigoBarras(ctx context.Context, codigo string) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByCodigoBarras(ctx, codigo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProdutoNaoEncontrado
		}
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Listar(ctx context.Context, filter dto.ProdutoFilter) (*dto.ProdutoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	produtos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	itens := make([]dto.ProdutoResponse, 0, len(produtos))
	for idx := range produtos {
		itens = append(itens, *produtoToResponse(&produtos[idx]))
	}
	return &dto.ProdutoListResponse{Data: itens, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *produtoService) ListarVencendo(ctx context.Context) ([]dto.ProdutoResponse, error) {
	produtos, err := s.repo.ListVencendo(ctx)
	if err != nil {
		return nil, err
	}
	itens := make([]dto.ProdutoResponse, 0, len(produtos))
	for idx := range produtos {
		itens = append(itens, *produtoToResponse(&produtos[idx]))
	}
	return itens, nil
}

func (s *produtoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarProdutoRequest) (*dto.ProdutoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProdutoNaoEncontrado
		}
		return nil, err
	}

	if req.Nome != nil {
		p.Nome = *req.Nome
	}
	if req.Descricao != nil {
		p.Descricao = req.Descricao
	}
	if req.Categoria != nil {
		p.Categoria = *req.Categoria
	}
	if req.PrecoCusto != nil {
		if req.PrecoCusto.IsNegative() {
			return nil, fmt.Errorf("%w: preço de custo negativo", ErrValidacao)
		}
		p.PrecoCusto = *req.PrecoCusto
	}
	if req.PrecoVenda != nil {
		if req.PrecoVenda.IsNegative() {
			return nil, fmt.Errorf("%w: preço de venda negativo", ErrValidacao)
		}
		p.PrecoVenda = *req.PrecoVenda
	}
	if p.PrecoVenda.LessThan(p.PrecoCusto) {
		log.Warn().Str("codigo", p.Codigo).Msg("preço de venda abaixo do custo")
	}
	if req.EstoqueMin != nil {
		p.EstoqueMin = *req.EstoqueMin
	}
	if req.UnidadeMedida != nil {
		p.UnidadeMedida = *req.UnidadeMedida
	}
	if req.FornecedorID != nil {
		fid, err := uuid.Parse(*req.FornecedorID)
		if err != nil {
			return nil, fmt.Errorf("%w: fornecedor_id inválido", ErrValidacao)
		}
		p.FornecedorID = &fid
	}
	if req.Atributos != nil {
		p.Atributos = req.Atributos
	}
	if req.TemValidade != nil {
		p.TemValidade = *req.TemValidade
	}
	if req.DataValidade != nil {
		t, err := time.Parse("2006-01-02", *req.DataValidade)
		if err != nil {
			return nil, fmt.Errorf("%w: data_validade inválida", ErrValidacao)
		}
		p.DataValidade = &t
	}
	if req.DiasAlertaValidade != nil {
		p.DiasAlertaValidade = *req.DiasAlertaValidade
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return produtoToResponse(p), nil
}

func (s *produtoService) Desativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProdutoNaoEncontrado
		}
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *produtoService) Reativar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProdutoNaoEncontrado
		}
		return err
	}
	return s.repo.Reativar(ctx, id)
}

// Excluir remove fisicamente apenas produtos sem histórico. Com qualquer
// movimentação no ledger a exclusão vira desativação obrigatória — histórico
// órfão não existe aqui.
func (s *produtoService) Excluir(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProdutoNaoEncontrado
		}
		return err
	}
	count, err := s.movRepo.CountByProduto(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: produto tem %d movimentação(ões) no histórico; use desativação", ErrValidacao, count)
	}
	return s.repo.HardDelete(ctx, id)
}

func produtoToResponse(p *model.Produto) *dto.ProdutoResponse {
	var fornecedorID *string
	if p.FornecedorID != nil {
		id := p.FornecedorID.String()
		fornecedorID = &id
	}
	var dataValidade *string
	if p.DataValidade != nil {
		d := p.DataValidade.Format("2006-01-02")
		dataValidade = &d
	}
	return &dto.ProdutoResponse{
		ID:                 p.ID.String(),
		Codigo:             p.Codigo,
		CodigoBarras:       p.CodigoBarras,
		Nome:               p.Nome,
		Descricao:          p.Descricao,
		Categoria:          p.Categoria,
		PrecoCusto:         p.PrecoCusto,
		PrecoVenda:         p.PrecoVenda,
		EstoqueAtual:       p.EstoqueAtual,
		EstoqueMin:         p.EstoqueMin,
		UnidadeMedida:      p.UnidadeMedida,
		FornecedorID:       fornecedorID,
		Atributos:          p.Atributos,
		TemValidade:        p.TemValidade,
		DataValidade:       dataValidade,
		DiasAlertaValidade: p.DiasAlertaValidade,
		Ativo:              p.Ativo,
		AbaixoDoMinimo:     p.EstoqueAtual <= p.EstoqueMin,
	}
}
