package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/repository"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EstoqueService é o ledger de movimentações: registra lançamentos pareados
// com o delta de estoque, estorna e consulta o histórico.
//
// Invariante central: para qualquer produto,
//
//	estoque_atual == estoque_inicial + Σ(entradas) − Σ(saidas)
//
// sobre as movimentações não estornadas. O pareamento INSERT+delta dentro de
// uma única transação é o que o sustenta.
type EstoqueService interface {
	RegistrarMovimentacao(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarMovimentacaoRequest) (*dto.MovimentacaoResponse, error)
	Estornar(ctx context.Context, usuarioID uuid.UUID, movimentacaoID uuid.UUID) error
	Listar(ctx context.Context, filter dto.MovimentacaoFilter) (*dto.MovimentacaoListResponse, error)
}

type estoqueService struct {
	repo        repository.MovimentacaoRepository
	produtoRepo repository.ProdutoRepository
	dispatcher  *worker.Dispatcher
}

func NewEstoqueService(
	repo repository.MovimentacaoRepository,
	produtoRepo repository.ProdutoRepository,
	dispatcher *worker.Dispatcher,
) EstoqueService {
	return &estoqueService{repo: repo, produtoRepo: produtoRepo, dispatcher: dispatcher}
}

// runTx executa fn dentro de uma transação GORM quando há banco, ou chama
// fn(nil) direto quando db é nil (modo de teste unitário com stubs).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// RegistrarMovimentacao cria um lançamento manual (entrada de compra, ajuste,
// perda) pareado com o delta de estoque em uma transação.
func (s *estoqueService) RegistrarMovimentacao(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarMovimentacaoRequest) (*dto.MovimentacaoResponse, error) {
	pid, err := uuid.Parse(req.ProdutoID)
	if err != nil {
		return nil, fmt.Errorf("%w: produto_id inválido", ErrValidacao)
	}
	if req.Quantidade <= 0 {
		return nil, fmt.Errorf("%w: quantidade deve ser maior que zero", ErrValidacao)
	}
	if req.Tipo != model.MovimentacaoEntrada && req.Tipo != model.MovimentacaoSaida {
		return nil, fmt.Errorf("%w: tipo %q", ErrValidacao, req.Tipo)
	}

	p, err := s.produtoRepo.FindByID(ctx, pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProdutoNaoEncontrado
		}
		return nil, err
	}
	if !p.Ativo {
		return nil, fmt.Errorf("%w: produto %s está inativo", ErrValidacao, p.Nome)
	}

	// Snapshot do valor unitário: custo na entrada, venda na saida.
	valorUnitario := p.PrecoCusto
	if req.Tipo == model.MovimentacaoSaida {
		valorUnitario = p.PrecoVenda
	}
	if req.ValorUnitario != nil {
		if req.ValorUnitario.IsNegative() {
			return nil, fmt.Errorf("%w: valor unitário negativo", ErrValidacao)
		}
		valorUnitario = *req.ValorUnitario
	}

	delta := req.Quantidade
	if req.Tipo == model.MovimentacaoSaida {
		delta = -req.Quantidade
	}

	var mov model.Movimentacao
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		atualizado, err := s.produtoRepo.AplicarDeltaEstoqueTx(tx, pid, delta)
		if err != nil {
			return traduzErroDelta(err, p.Nome)
		}

		mov = model.Movimentacao{
			ProdutoID:       pid,
			ProdutoNome:     p.Nome,
			ProdutoCodigo:   p.Codigo,
			Tipo:            req.Tipo,
			Quantidade:      req.Quantidade,
			ValorUnitario:   valorUnitario,
			ValorTotal:      valorUnitario.Mul(decimal.NewFromInt(int64(req.Quantidade))),
			EstoqueAnterior: atualizado.EstoqueAtual - delta,
			EstoqueNovo:     atualizado.EstoqueAtual,
			Observacao:      req.Observacao,
			UsuarioID:       usuarioID,
		}
		if err := s.repo.CreateTx(tx, &mov); err != nil {
			if tx == nil {
				// Sem rollback: desfaz o delta já aplicado para o saldo não
				// divergir do ledger.
				if _, compErr := s.produtoRepo.AplicarDeltaEstoqueTx(nil, pid, -delta); compErr != nil {
					log.Error().
						Err(compErr).
						Str("produto", p.Codigo).
						Int("delta", delta).
						Msg("compensação do delta falhou após erro de escrita")
				}
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("movimentacao_id", mov.ID.String()).
		Str("produto", p.Codigo).
		Str("tipo", mov.Tipo).
		Int("quantidade", mov.Quantidade).
		Int("estoque_novo", mov.EstoqueNovo).
		Msg("movimentacao registrada")

	s.alertarEstoqueBaixo(ctx, p, mov.EstoqueNovo)

	return movimentacaoToResponse(&mov), nil
}

// Estornar desfaz uma movimentação: aplica o delta compensatório e apaga o
// registro, tudo na mesma transação. Estornar uma entrada antiga cujo estoque
// já foi consumido por saidas posteriores é recusado — o delta compensatório
// deixaria o estoque negativo.
func (s *estoqueService) Estornar(ctx context.Context, usuarioID uuid.UUID, movimentacaoID uuid.UUID) error {
	mov, err := s.repo.FindByID(ctx, movimentacaoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMovimentacaoNaoEncontrada
		}
		return err
	}

	compensacao := -mov.DeltaEstoque()

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if _, err := s.produtoRepo.AplicarDeltaEstoqueTx(tx, mov.ProdutoID, compensacao); err != nil {
			return traduzErroDelta(err, mov.ProdutoNome)
		}
		if err := s.repo.DeleteTx(tx, movimentacaoID); err != nil {
			if tx == nil {
				// Sem rollback: reaplica o delta original para não deixar o
				// estorno pela metade.
				if _, compErr := s.produtoRepo.AplicarDeltaEstoqueTx(nil, mov.ProdutoID, mov.DeltaEstoque()); compErr != nil {
					log.Error().
						Err(compErr).
						Str("produto", mov.ProdutoCodigo).
						Int("delta", mov.DeltaEstoque()).
						Msg("compensação do estorno falhou após erro de remoção")
				}
			}
			return err
		}
		return nil
	})
	if txErr != nil {
		return txErr
	}

	log.Info().
		Str("movimentacao_id", movimentacaoID.String()).
		Str("produto", mov.ProdutoCodigo).
		Str("usuario_id", usuarioID.String()).
		Int("compensacao", compensacao).
		Msg("movimentacao estornada")
	return nil
}

func (s *estoqueService) Listar(ctx context.Context, filter dto.MovimentacaoFilter) (*dto.MovimentacaoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	movimentacoes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	itens := make([]dto.MovimentacaoResponse, 0, len(movimentacoes))
	for idx := range movimentacoes {
		itens = append(itens, *movimentacaoToResponse(&movimentacoes[idx]))
	}
	return &dto.MovimentacaoListResponse{
		Data:  itens,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// alertarEstoqueBaixo enfileira o job de alerta quando o estoque cruzou o
// mínimo. Best-effort: falha de enfileiramento não derruba a operação.
func (s *estoqueService) alertarEstoqueBaixo(ctx context.Context, p *model.Produto, estoqueNovo int) {
	if s.dispatcher == nil || estoqueNovo > p.EstoqueMin {
		return
	}
	payload := map[string]interface{}{
		"produto_id":     p.ID.String(),
		"produto_nome":   p.Nome,
		"produto_codigo": p.Codigo,
		"estoque_atual":  estoqueNovo,
		"estoque_minimo": p.EstoqueMin,
	}
	if err := s.dispatcher.EnqueueAlertaEstoque(ctx, payload); err != nil {
		log.Warn().Err(err).Str("produto", p.Codigo).Msg("falha ao enfileirar alerta de estoque")
	}
}

// traduzErroDelta mapeia os erros do ponto de mutação para erros de domínio.
func traduzErroDelta(err error, produtoNome string) error {
	switch {
	case errors.Is(err, repository.ErrDeltaNegaEstoque):
		return fmt.Errorf("%w: produto %s", ErrEstoqueNegativo, produtoNome)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrProdutoNaoEncontrado
	default:
		return err
	}
}

func movimentacaoToResponse(m *model.Movimentacao) *dto.MovimentacaoResponse {
	var vendaID *string
	if m.VendaID != nil {
		id := m.VendaID.String()
		vendaID = &id
	}
	return &dto.MovimentacaoResponse{
		ID:              m.ID.String(),
		ProdutoID:       m.ProdutoID.String(),
		ProdutoNome:     m.ProdutoNome,
		ProdutoCodigo:   m.ProdutoCodigo,
		Tipo:            m.Tipo,
		Quantidade:      m.Quantidade,
		ValorUnitario:   m.ValorUnitario,
		ValorTotal:      m.ValorTotal,
		EstoqueAnterior: m.EstoqueAnterior,
		EstoqueNovo:     m.EstoqueNovo,
		Observacao:      m.Observacao,
		VendaID:         vendaID,
		MetodoPagamento: m.MetodoPagamento,
		CreatedAt:       m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
