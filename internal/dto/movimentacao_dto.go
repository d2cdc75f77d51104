package dto

import "github.com/shopspring/decimal"

// RegistrarMovimentacaoRequest cria um lançamento manual (entrada de compra,
// ajuste, perda). Saidas de venda nascem no fechamento do PDV, não aqui.
type RegistrarMovimentacaoRequest struct {
	ProdutoID  string `json:"produto_id" validate:"required,uuid"`
	Tipo       string `json:"tipo"       validate:"required,oneof=entrada saida"`
	Quantidade int    `json:"quantidade" validate:"required,gt=0"`
	// ValorUnitario opcional: quando ausente o serviço usa o snapshot padrão
	// (preco_custo para entrada, preco_venda para saida).
	ValorUnitario *decimal.Decimal `json:"valor_unitario" validate:"omitempty"`
	Observacao    string           `json:"observacao"`
}

// MovimentacaoFilter é vinculado da query string de GET /v1/movimentacoes.
type MovimentacaoFilter struct {
	ProdutoID string `form:"produto_id" validate:"omitempty,uuid"`
	Tipo      string `form:"tipo"       validate:"omitempty,oneof=entrada saida"`
	Categoria string `form:"categoria"`
	// Busca livre sobre nome/código do produto e observação.
	Busca      string `form:"busca"`
	DataInicio string `form:"data_inicio" validate:"omitempty,datetime=2006-01-02"`
	DataFim    string `form:"data_fim"    validate:"omitempty,datetime=2006-01-02"`
	// data_desc (default) | data_asc | produto | valor_desc
	Ordem string `form:"ordem,default=data_desc" validate:"omitempty,oneof=data_desc data_asc produto valor_desc"`
	Page  int    `form:"page,default=1"    validate:"min=1"`
	Limit int    `form:"limit,default=50"  validate:"min=1,max=500"`
}

type MovimentacaoResponse struct {
	ID              string          `json:"id"`
	ProdutoID       string          `json:"produto_id"`
	ProdutoNome     string          `json:"produto_nome"`
	ProdutoCodigo   string          `json:"produto_codigo"`
	Tipo            string          `json:"tipo"`
	Quantidade      int             `json:"quantidade"`
	ValorUnitario   decimal.Decimal `json:"valor_unitario"`
	ValorTotal      decimal.Decimal `json:"valor_total"`
	EstoqueAnterior int             `json:"estoque_anterior"`
	EstoqueNovo     int             `json:"estoque_novo"`
	Observacao      string          `json:"observacao"`
	VendaID         *string         `json:"venda_id,omitempty"`
	MetodoPagamento *string         `json:"metodo_pagamento,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

type MovimentacaoListResponse struct {
	Data  []MovimentacaoResponse `json:"data"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}
