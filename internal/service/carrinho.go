package service

import (
	"fmt"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Modos de desconto geral do carrinho.
const (
	DescontoPercentual = "percentual"
	DescontoValor      = "valor"
)

// ItemCarrinho é uma linha da venda em montagem. O preço unitário é um
// snapshot do preco_venda no momento da adição: editar o cadastro depois não
// muda um carrinho em andamento.
type ItemCarrinho struct {
	ProdutoID     uuid.UUID       `json:"produto_id"`
	ProdutoNome   string          `json:"produto_nome"`
	ProdutoCodigo string          `json:"produto_codigo"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Desconto      decimal.Decimal `json:"desconto"`
}

// Subtotal da linha: preco × quantidade − desconto.
func (i *ItemCarrinho) Subtotal() decimal.Decimal {
	return i.PrecoUnitario.Mul(decimal.NewFromInt(int64(i.Quantidade))).Sub(i.Desconto)
}

// Carrinho agrega as linhas de uma sessão de PDV. É efêmero: nunca vai ao
// banco — o fechamento é o único caminho que produz registros duráveis
// (movimentações). Serializável em JSON para a sessão no Redis.
type Carrinho struct {
	Itens         []ItemCarrinho  `json:"itens"`
	TipoDesconto  string          `json:"tipo_desconto"` // percentual | valor | ""
	ValorDesconto decimal.Decimal `json:"valor_desconto"`
	ClienteID     *uuid.UUID      `json:"cliente_id"`
	Metodo        string          `json:"metodo_pagamento"`
	ValorRecebido decimal.Decimal `json:"valor_recebido"`
}

// AdicionarItem valida e adiciona (ou mescla) uma linha. A quantidade
// combinada é revalidada contra o estoque — checagem otimista; o fechamento
// revalida com autoridade.
func (c *Carrinho) AdicionarItem(p *model.Produto, quantidade int) error {
	if quantidade <= 0 {
		quantidade = 1
	}
	if !p.Ativo {
		return fmt.Errorf("%w: produto %s está inativo", ErrValidacao, p.Nome)
	}

	for idx := range c.Itens {
		if c.Itens[idx].ProdutoID == p.ID {
			combinada := c.Itens[idx].Quantidade + quantidade
			if combinada > p.EstoqueAtual {
				return fmt.Errorf("%w: %s tem %d em estoque, carrinho pediria %d",
					ErrEstoqueInsuficiente, p.Nome, p.EstoqueAtual, combinada)
			}
			c.Itens[idx].Quantidade = combinada
			return nil
		}
	}

	if quantidade > p.EstoqueAtual {
		return fmt.Errorf("%w: %s tem %d em estoque, pedido %d",
			ErrEstoqueInsuficiente, p.Nome, p.EstoqueAtual, quantidade)
	}
	c.Itens = append(c.Itens, ItemCarrinho{
		ProdutoID:     p.ID,
		ProdutoNome:   p.Nome,
		ProdutoCodigo: p.Codigo,
		Quantidade:    quantidade,
		PrecoUnitario: p.PrecoVenda, // nunca preco_custo
		Desconto:      decimal.Zero,
	})
	return nil
}

// DefinirQuantidade ajusta a linha; quantidade <= 0 remove.
func (c *Carrinho) DefinirQuantidade(p *model.Produto, quantidade int) error {
	if quantidade <= 0 {
		c.RemoverItem(p.ID)
		return nil
	}
	for idx := range c.Itens {
		if c.Itens[idx].ProdutoID == p.ID {
			if quantidade > p.EstoqueAtual {
				return fmt.Errorf("%w: %s tem %d em estoque, pedido %d",
					ErrEstoqueInsuficiente, p.Nome, p.EstoqueAtual, quantidade)
			}
			c.Itens[idx].Quantidade = quantidade
			// Reaperta o desconto da linha ao novo teto.
			c.Itens[idx].Desconto = clampDesconto(c.Itens[idx].Desconto, c.Itens[idx].PrecoUnitario, quantidade)
			return nil
		}
	}
	return fmt.Errorf("%w: produto %s não está no carrinho", ErrValidacao, p.Nome)
}

// DefinirDescontoItem grampeia o desconto em [0, preco × quantidade].
func (c *Carrinho) DefinirDescontoItem(produtoID uuid.UUID, desconto decimal.Decimal) error {
	for idx := range c.Itens {
		if c.Itens[idx].ProdutoID == produtoID {
			c.Itens[idx].Desconto = clampDesconto(desconto, c.Itens[idx].PrecoUnitario, c.Itens[idx].Quantidade)
			return nil
		}
	}
	return fmt.Errorf("%w: produto não está no carrinho", ErrValidacao)
}

func clampDesconto(d, preco decimal.Decimal, qtd int) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	teto := preco.Mul(decimal.NewFromInt(int64(qtd)))
	if d.GreaterThan(teto) {
		return teto
	}
	return d
}

func (c *Carrinho) RemoverItem(produtoID uuid.UUID) {
	for idx := range c.Itens {
		if c.Itens[idx].ProdutoID == produtoID {
			c.Itens = append(c.Itens[:idx], c.Itens[idx+1:]...)
			return
		}
	}
}

func (c *Carrinho) Limpar() {
	*c = Carrinho{}
}

// DefinirDescontoGeral troca o modo de desconto do carrinho. Os modos são
// mutuamente exclusivos: trocar de modo descarta o valor do anterior.
func (c *Carrinho) DefinirDescontoGeral(tipo string, valor decimal.Decimal) error {
	if tipo != DescontoPercentual && tipo != DescontoValor {
		return fmt.Errorf("%w: tipo de desconto %q", ErrValidacao, tipo)
	}
	if valor.IsNegative() {
		return fmt.Errorf("%w: desconto negativo", ErrValidacao)
	}
	if tipo == DescontoPercentual && valor.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: percentual acima de 100", ErrValidacao)
	}
	c.TipoDesconto = tipo
	c.ValorDesconto = valor
	return nil
}

func (c *Carrinho) DefinirPagamento(metodo string, recebido decimal.Decimal, clienteID *uuid.UUID) {
	c.Metodo = metodo
	c.ValorRecebido = recebido
	c.ClienteID = clienteID
}

// ─── Motor de desconto ───────────────────────────────────────────────────────

// Subtotal = Σ(preco × quantidade) − Σ(desconto de linha).
func (c *Carrinho) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for idx := range c.Itens {
		subtotal = subtotal.Add(c.Itens[idx].Subtotal())
	}
	return subtotal
}

// Desconto geral aplicado sobre o subtotal, conforme o modo ativo.
func (c *Carrinho) Desconto() decimal.Decimal {
	subtotal := c.Subtotal()
	switch c.TipoDesconto {
	case DescontoPercentual:
		return subtotal.Mul(c.ValorDesconto).Div(decimal.NewFromInt(100)).Round(2)
	case DescontoValor:
		if c.ValorDesconto.GreaterThan(subtotal) {
			return subtotal
		}
		return c.ValorDesconto
	default:
		return decimal.Zero
	}
}

// Total = max(0, subtotal − desconto). Com o desconto limitado ao subtotal o
// max é redundante, mas o invariante 0 ≤ total ≤ subtotal fica explícito.
func (c *Carrinho) Total() decimal.Decimal {
	total := c.Subtotal().Sub(c.Desconto())
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Troco = max(0, recebido − total). Só faz sentido para dinheiro; receber
// menos que o total é rejeitado no fechamento, não aqui.
func (c *Carrinho) Troco() decimal.Decimal {
	troco := c.ValorRecebido.Sub(c.Total())
	if troco.IsNegative() {
		return decimal.Zero
	}
	return troco
}

func (c *Carrinho) Vazio() bool { return len(c.Itens) == 0 }
