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
	"gorm.io/gorm"
)

// Métodos de pagamento aceitos pelo PDV.
const (
	PagamentoDinheiro  = "dinheiro"
	PagamentoDebito    = "debito"
	PagamentoCredito   = "credito"
	PagamentoPix       = "pix"
	PagamentoCrediario = "crediario"
)

// Estados do fechamento. Validando pode voltar para Aberta (nenhuma escrita
// aconteceu); a partir de Confirmando a operação roda até o fim ou falha
// explicitamente — nunca aborta em silêncio no meio.
type estadoFechamento int

const (
	fechamentoAberta estadoFechamento = iota
	fechamentoValidando
	fechamentoConfirmando
	fechamentoFechada
)

func (e estadoFechamento) String() string {
	switch e {
	case fechamentoAberta:
		return "aberta"
	case fechamentoValidando:
		return "validando"
	case fechamentoConfirmando:
		return "confirmando"
	case fechamentoFechada:
		return "fechada"
	default:
		return "desconhecido"
	}
}

// VendaService fecha um carrinho em registros duráveis: uma Movimentacao de
// saida + um delta de estoque por linha, tudo em uma transação.
type VendaService interface {
	Finalizar(ctx context.Context, usuarioID uuid.UUID, sessaoID string) (*dto.Recibo, error)
}

type vendaService struct {
	store       CarrinhoStore
	produtoRepo repository.ProdutoRepository
	movRepo     repository.MovimentacaoRepository
	clienteRepo repository.ClienteRepository
	dispatcher  *worker.Dispatcher
}

func NewVendaService(
	store CarrinhoStore,
	produtoRepo repository.ProdutoRepository,
	movRepo repository.MovimentacaoRepository,
	clienteRepo repository.ClienteRepository,
	dispatcher *worker.Dispatcher,
) VendaService {
	return &vendaService{
		store:       store,
		produtoRepo: produtoRepo,
		movRepo:     movRepo,
		clienteRepo: clienteRepo,
		dispatcher:  dispatcher,
	}
}

// Finalizar percorre Aberta → Validando → Confirmando → Fechada.
//
// Validando falha sem nenhuma escrita e mantém o carrinho — o operador
// corrige e tenta de novo. Confirmando grava os pares linha a linha dentro de
// uma transação: com banco real é tudo-ou-nada; no modo stub (sem transação)
// a linha que falhou tem o delta de estoque compensado na hora, e uma falha
// após ≥ 1 par durável vira ErroCommitParcial com a lista das linhas que
// debitaram estoque, nunca um carrinho limpo em silêncio.
func (s *vendaService) Finalizar(ctx context.Context, usuarioID uuid.UUID, sessaoID string) (*dto.Recibo, error) {
	carrinho, err := s.store.Obter(ctx, sessaoID)
	if err != nil {
		return nil, err
	}

	estado := fechamentoAberta
	avancar := func(novo estadoFechamento) {
		log.Debug().Str("sessao_id", sessaoID).Stringer("de", estado).Stringer("para", novo).Msg("fechamento")
		estado = novo
	}

	// ── Validando ────────────────────────────────────────────────────────────
	avancar(fechamentoValidando)
	if carrinho.Vazio() {
		return nil, fmt.Errorf("%w: carrinho vazio", ErrValidacao)
	}

	// Recheck autoritativo: o estoque pode ter andado desde a adição
	// (venda concorrente em outro PDV).
	produtos := make(map[uuid.UUID]*model.Produto, len(carrinho.Itens))
	for idx := range carrinho.Itens {
		item := &carrinho.Itens[idx]
		p, err := s.produtoRepo.FindByID(ctx, item.ProdutoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProdutoNaoEncontrado, item.ProdutoNome)
			}
			return nil, err
		}
		if !p.Ativo {
			return nil, fmt.Errorf("%w: produto %s está inativo", ErrValidacao, p.Nome)
		}
		if item.Quantidade > p.EstoqueAtual {
			return nil, fmt.Errorf("%w: %s tem %d em estoque, carrinho pede %d",
				ErrEstoqueInsuficiente, p.Nome, p.EstoqueAtual, item.Quantidade)
		}
		produtos[p.ID] = p
	}

	total := carrinho.Total()
	switch carrinho.Metodo {
	case PagamentoDinheiro:
		if carrinho.ValorRecebido.LessThan(total) {
			return nil, fmt.Errorf("%w: recebido %s, total %s",
				ErrPagamentoInsuficiente, carrinho.ValorRecebido.StringFixed(2), total.StringFixed(2))
		}
	case PagamentoCrediario:
		if carrinho.ClienteID == nil {
			return nil, fmt.Errorf("%w: venda no crediário exige cliente", ErrValidacao)
		}
		cliente, err := s.clienteRepo.FindByID(ctx, *carrinho.ClienteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrClienteNaoEncontrado
			}
			return nil, err
		}
		if total.GreaterThan(cliente.LimiteCredito) {
			return nil, fmt.Errorf("%w: total %s, limite %s",
				ErrLimiteCreditoExcedido, total.StringFixed(2), cliente.LimiteCredito.StringFixed(2))
		}
	case PagamentoDebito, PagamentoCredito, PagamentoPix:
		// Captura externa — tratado como pago no valor exato.
	default:
		return nil, fmt.Errorf("%w: método de pagamento %q", ErrValidacao, carrinho.Metodo)
	}

	// ── Confirmando ──────────────────────────────────────────────────────────
	avancar(fechamentoConfirmando)
	vendaID := uuid.New()
	agora := time.Now()
	troco := carrinho.Troco()
	recebido := carrinho.ValorRecebido

	var confirmados []uuid.UUID
	txErr := runTx(ctx, s.movRepo.DB(), func(tx *gorm.DB) error {
		for idx := range carrinho.Itens {
			item := &carrinho.Itens[idx]

			atualizado, err := s.produtoRepo.AplicarDeltaEstoqueTx(tx, item.ProdutoID, -item.Quantidade)
			if err != nil {
				return traduzErroDelta(err, item.ProdutoNome)
			}

			metodo := carrinho.Metodo
			mov := &model.Movimentacao{
				ProdutoID:       item.ProdutoID,
				ProdutoNome:     item.ProdutoNome,
				ProdutoCodigo:   item.ProdutoCodigo,
				Tipo:            model.MovimentacaoSaida,
				Quantidade:      item.Quantidade,
				ValorUnitario:   item.PrecoUnitario,
				ValorTotal:      item.Subtotal(),
				EstoqueAnterior: atualizado.EstoqueAtual + item.Quantidade,
				EstoqueNovo:     atualizado.EstoqueAtual,
				Observacao:      fmt.Sprintf("Venda PDV %s", vendaID),
				VendaID:         &vendaID,
				ClienteID:       carrinho.ClienteID,
				MetodoPagamento: &metodo,
				ValorRecebido:   &recebido,
				Troco:           &troco,
				UsuarioID:       usuarioID,
			}
			if err := s.movRepo.CreateTx(tx, mov); err != nil {
				if tx == nil {
					// Sem rollback: o delta desta linha já foi aplicado. Devolve
					// na hora para o saldo não divergir do ledger; se a própria
					// compensação falhar, a linha entra na lista de debitadas.
					if _, compErr := s.produtoRepo.AplicarDeltaEstoqueTx(nil, item.ProdutoID, item.Quantidade); compErr != nil {
						log.Error().
							Err(compErr).
							Str("produto_id", item.ProdutoID.String()).
							Int("quantidade", item.Quantidade).
							Msg("compensação da linha meio-gravada falhou")
						confirmados = append(confirmados, item.ProdutoID)
					}
				}
				return fmt.Errorf("gravar movimentação de %s: %w", item.ProdutoNome, err)
			}
			confirmados = append(confirmados, item.ProdutoID)
		}
		return nil
	})
	if txErr != nil {
		if s.movRepo.DB() == nil && len(confirmados) > 0 {
			// Sem transação real não há rollback: as linhas confirmadas já
			// decrementaram estoque. Sinaliza alto e com detalhe suficiente
			// para reconciliação — jamais relatar como "nenhuma venda".
			parcial := &ErroCommitParcial{VendaID: vendaID, ProdutosConfirmados: confirmados, Causa: txErr}
			log.Error().
				Str("venda_id", vendaID.String()).
				Int("itens_confirmados", len(confirmados)).
				Err(txErr).
				Msg("commit parcial no fechamento da venda")
			return nil, parcial
		}
		return nil, txErr
	}

	// ── Fechada ──────────────────────────────────────────────────────────────
	avancar(fechamentoFechada)

	if err := s.store.Remover(ctx, sessaoID); err != nil {
		// A venda está durável; a sessão órfã expira pelo TTL.
		log.Warn().Err(err).Str("sessao_id", sessaoID).Msg("falha ao limpar carrinho pós-venda")
	}

	recibo := s.montarRecibo(vendaID, carrinho, agora)
	s.posFechamento(ctx, recibo, carrinho, produtos)

	log.Info().
		Str("venda_id", vendaID.String()).
		Str("usuario_id", usuarioID.String()).
		Int("itens", len(carrinho.Itens)).
		Str("total", recibo.Total.StringFixed(2)).
		Str("metodo", carrinho.Metodo).
		Msg("venda fechada")

	return recibo, nil
}

func (s *vendaService) montarRecibo(vendaID uuid.UUID, c *Carrinho, quando time.Time) *dto.Recibo {
	itens := make([]dto.ItemCarrinhoResponse, 0, len(c.Itens))
	for idx := range c.Itens {
		item := &c.Itens[idx]
		itens = append(itens, dto.ItemCarrinhoResponse{
			ProdutoID:     item.ProdutoID.String(),
			ProdutoNome:   item.ProdutoNome,
			ProdutoCodigo: item.ProdutoCodigo,
			Quantidade:    item.Quantidade,
			PrecoUnitario: item.PrecoUnitario,
			Desconto:      item.Desconto,
			Subtotal:      item.Subtotal(),
		})
	}
	return &dto.Recibo{
		VendaID:       vendaID.String(),
		Itens:         itens,
		Subtotal:      c.Subtotal(),
		Desconto:      c.Desconto(),
		Total:         c.Total(),
		Metodo:        c.Metodo,
		ValorRecebido: c.ValorRecebido,
		Troco:         c.Troco(),
		DataHora:      quando.UTC().Format(time.RFC3339),
	}
}

// posFechamento enfileira os jobs assíncronos: PDF do recibo e alertas de
// estoque mínimo. Fire & forget — a venda já está durável.
func (s *vendaService) posFechamento(ctx context.Context, recibo *dto.Recibo, c *Carrinho, produtos map[uuid.UUID]*model.Produto) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.EnqueueRecibo(ctx, recibo); err != nil {
		log.Warn().Err(err).Str("venda_id", recibo.VendaID).Msg("falha ao enfileirar recibo")
	}
	for idx := range c.Itens {
		item := &c.Itens[idx]
		p := produtos[item.ProdutoID]
		if p == nil {
			continue
		}
		restante := p.EstoqueAtual - item.Quantidade
		if restante > p.EstoqueMin {
			continue
		}
		payload := map[string]interface{}{
			"produto_id":     p.ID.String(),
			"produto_nome":   p.Nome,
			"produto_codigo": p.Codigo,
			"estoque_atual":  restante,
			"estoque_minimo": p.EstoqueMin,
		}
		if err := s.dispatcher.EnqueueAlertaEstoque(ctx, payload); err != nil {
			log.Warn().Err(err).Str("produto", p.Codigo).Msg("falha ao enfileirar alerta de estoque")
		}
	}
}
