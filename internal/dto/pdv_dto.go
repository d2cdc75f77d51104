package dto

import "github.com/shopspring/decimal"

// ─── Operações do carrinho ───────────────────────────────────────────────────

type AdicionarItemRequest struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Quantidade int    `json:"quantidade" validate:"min=0"` // 0 → default 1
}

type DefinirQuantidadeRequest struct {
	Quantidade int `json:"quantidade"` // <= 0 remove a linha
}

type DefinirDescontoItemRequest struct {
	Desconto decimal.Decimal `json:"desconto" validate:"min=0"`
}

// DescontoGeralRequest troca o modo de desconto do carrinho inteiro.
// Os modos são mutuamente exclusivos: definir um zera o outro.
type DescontoGeralRequest struct {
	Tipo  string          `json:"tipo"  validate:"required,oneof=percentual valor"`
	Valor decimal.Decimal `json:"valor" validate:"min=0"`
}

type PagamentoRequest struct {
	Metodo        string          `json:"metodo" validate:"required,oneof=dinheiro debito credito pix crediario"`
	ValorRecebido decimal.Decimal `json:"valor_recebido" validate:"min=0"`
	ClienteID     *string         `json:"cliente_id" validate:"omitempty,uuid"`
}

// ─── Respostas ───────────────────────────────────────────────────────────────

type ItemCarrinhoResponse struct {
	ProdutoID     string          `json:"produto_id"`
	ProdutoNome   string          `json:"produto_nome"`
	ProdutoCodigo string          `json:"produto_codigo"`
	Quantidade    int             `json:"quantidade"`
	PrecoUnitario decimal.Decimal `json:"preco_unitario"`
	Desconto      decimal.Decimal `json:"desconto"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

type CarrinhoResponse struct {
	SessaoID      string                 `json:"sessao_id"`
	Itens         []ItemCarrinhoResponse `json:"itens"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	TipoDesconto  string                 `json:"tipo_desconto"`
	ValorDesconto decimal.Decimal        `json:"valor_desconto"`
	Desconto      decimal.Decimal        `json:"desconto"`
	Total         decimal.Decimal        `json:"total"`
	Metodo        string                 `json:"metodo_pagamento"`
	ValorRecebido decimal.Decimal        `json:"valor_recebido"`
	Troco         decimal.Decimal        `json:"troco"`
	ClienteID     *string                `json:"cliente_id"`
}

// Recibo é o artefato estruturado entregue ao colaborador externo de
// impressão/exportação após o fechamento da venda.
type Recibo struct {
	VendaID       string                 `json:"venda_id"`
	Itens         []ItemCarrinhoResponse `json:"itens"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	Desconto      decimal.Decimal        `json:"desconto"`
	Total         decimal.Decimal        `json:"total"`
	Metodo        string                 `json:"metodo_pagamento"`
	ValorRecebido decimal.Decimal        `json:"valor_recebido"`
	Troco         decimal.Decimal        `json:"troco"`
	DataHora      string                 `json:"data_hora"`
}
