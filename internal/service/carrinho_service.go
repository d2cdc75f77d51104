package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CarrinhoService orquestra as operações de montagem de venda de uma sessão
// de PDV: carrega o carrinho do store, aplica a operação validando contra o
// cadastro, e persiste de volta.
type CarrinhoService interface {
	AbrirSessao(ctx context.Context) (string, error)
	Obter(ctx context.Context, sessaoID string) (*dto.CarrinhoResponse, error)
	AdicionarItem(ctx context.Context, sessaoID string, req dto.AdicionarItemRequest) (*dto.CarrinhoResponse, error)
	DefinirQuantidade(ctx context.Context, sessaoID string, produtoID uuid.UUID, quantidade int) (*dto.CarrinhoResponse, error)
	DefinirDescontoItem(ctx context.Context, sessaoID string, produtoID uuid.UUID, req dto.DefinirDescontoItemRequest) (*dto.CarrinhoResponse, error)
	RemoverItem(ctx context.Context, sessaoID string, produtoID uuid.UUID) (*dto.CarrinhoResponse, error)
	DefinirDescontoGeral(ctx context.Context, sessaoID string, req dto.DescontoGeralRequest) (*dto.CarrinhoResponse, error)
	DefinirPagamento(ctx context.Context, sessaoID string, req dto.PagamentoRequest) (*dto.CarrinhoResponse, error)
	Limpar(ctx context.Context, sessaoID string) error
}

type carrinhoService struct {
	store       CarrinhoStore
	produtoRepo repository.ProdutoRepository
}

func NewCarrinhoService(store CarrinhoStore, produtoRepo repository.ProdutoRepository) CarrinhoService {
	return &carrinhoService{store: store, produtoRepo: produtoRepo}
}

func (s *carrinhoService) AbrirSessao(ctx context.Context) (string, error) {
	sessaoID := uuid.NewString()
	if err := s.store.Salvar(ctx, sessaoID, &Carrinho{}); err != nil {
		return "", err
	}
	return sessaoID, nil
}

func (s *carrinhoService) Obter(ctx context.Context, sessaoID string) (*dto.CarrinhoResponse, error) {
	c, err := s.store.Obter(ctx, sessaoID)
	if err != nil {
		return nil, err
	}
	return carrinhoToResponse(sessaoID, c), nil
}

func (s *carrinhoService) AdicionarItem(ctx context.Context, sessaoID string, req dto.AdicionarItemRequest) (*dto.CarrinhoResponse, error) {
	pid, err := uuid.Parse(req.ProdutoID)
	if err != nil {
		return nil, fmt.Errorf("%w: produto_id inválido", ErrValidacao)
	}
	return s.mutar(ctx, sessaoID, func(c *Carrinho) error {
		p, err := s.produtoRepo.FindByID(ctx, pid)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProdutoNaoEncontrado
			}
			return err
		}
		return c.AdicionarItem(p, req.Quantidade)
	})
}

func (s *carrinhoService) DefinirQuantidade(ctx context.Context, sessaoID string, produtoID uuid.UUID, quantidade int) (*dto.CarrinhoResponse, error) {
	return s.mutar(ctx, sessaoID, func(c *Carrinho) error {
		p, err := s.produtoRepo.FindByID(ctx, produtoID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProdutoNaoEncontrado
			}
			return err
		}
		return c.DefinirQuantidade(p, quantidade)
	})
}

func (s *carrinhoService) DefinirDescontoItem(ctx context.Context, sessaoID string, produtoID uuid.UUID, req dto.DefinirDescontoItemRequest) (*dto.CarrinhoResponse, error) {
	return s.mutar(ctx, sessaoID, func(c *Carrinho) error {
		return c.DefinirDescontoItem(produtoID, req.Desconto)
	})
}

func (s *carrinhoService) RemoverItem(ctx context.Context, sessaoID string, produtoID uuid.UUID) (*dto.CarrinhoResponse, error) {
	return s.mutar(ctx, sessaoID, func(c *Carrinho) error {
		c.RemoverItem(produtoID)
		return nil
	})
}

func (s *carrinhoService) DefinirDescontoGeral(ctx context.Context, sessaoID string, req dto.DescontoGeralRequest) (*dto.CarrinhoResponse, error) {
	return s.mutar(ctx, sessaoID, func(c *Carrinho) error {
		return c.DefinirDescontoGeral(req.Tipo, req.Valor)
	})
}

func (s *carrinhoService) DefinirPagamento(ctx context.Context, sessaoID string, req dto.PagamentoRequest) (*dto.CarrinhoResponse, error) {
	var clienteID *uuid.UUID
	if req.ClienteID != nil {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, fmt.Errorf("%w: cliente_id inválido", ErrValidacao)
		}
		clienteID = &cid
	}
	return s.mutar(ctx, sessaoID, func(c *Carrinho) error {
		c.DefinirPagamento(req.Metodo, req.ValorRecebido, clienteID)
		return nil
	})
}

// Limpar descarta a sessão sem efeitos colaterais — abandono de venda.
func (s *carrinhoService) Limpar(ctx context.Context, sessaoID string) error {
	return s.store.Remover(ctx, sessaoID)
}

// mutar é o ciclo carregar → aplicar → salvar comum a todas as operações.
func (s *carrinhoService) mutar(ctx context.Context, sessaoID string, fn func(*Carrinho) error) (*dto.CarrinhoResponse, error) {
	c, err := s.store.Obter(ctx, sessaoID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Salvar(ctx, sessaoID, c); err != nil {
		return nil, err
	}
	return carrinhoToResponse(sessaoID, c), nil
}

func carrinhoToResponse(sessaoID string, c *Carrinho) *dto.CarrinhoResponse {
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
	var clienteID *string
	if c.ClienteID != nil {
		id := c.ClienteID.String()
		clienteID = &id
	}
	return &dto.CarrinhoResponse{
		SessaoID:      sessaoID,
		Itens:         itens,
		Subtotal:      c.Subtotal(),
		TipoDesconto:  c.TipoDesconto,
		ValorDesconto: c.ValorDesconto,
		Desconto:      c.Desconto(),
		Total:         c.Total(),
		Metodo:        c.Metodo,
		ValorRecebido: c.ValorRecebido,
		Troco:         c.Troco(),
		ClienteID:     clienteID,
	}
}
