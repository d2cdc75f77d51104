package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CriarProdutoRequest struct {
	CodigoBarras       *string           `json:"codigo_barras" validate:"omitempty,min=8,max=18"`
	Nome               string            `json:"nome"          validate:"required,min=2,max=120"`
	Descricao          *string           `json:"descricao"`
	Categoria          string            `json:"categoria"     validate:"required"`
	PrecoCusto         decimal.Decimal   `json:"preco_custo"   validate:"min=0"`
	PrecoVenda         decimal.Decimal   `json:"preco_venda"   validate:"min=0"`
	EstoqueInicial     int               `json:"estoque_inicial" validate:"min=0"`
	EstoqueMin         int               `json:"estoque_minimo"  validate:"min=0"`
	UnidadeMedida      string            `json:"unidade_medida"`
	FornecedorID       *string           `json:"fornecedor_id" validate:"omitempty,uuid"`
	Atributos          map[string]string `json:"atributos"`
	TemValidade        bool              `json:"tem_validade"`
	DataValidade       *string           `json:"data_validade"        validate:"omitempty,datetime=2006-01-02"`
	DiasAlertaValidade int               `json:"dias_alerta_validade" validate:"min=0"`
}

type AtualizarProdutoRequest struct {
	Nome               *string           `json:"nome"        validate:"omitempty,min=2,max=120"`
	Descricao          *string           `json:"descricao"`
	Categoria          *string           `json:"categoria"`
	PrecoCusto         *decimal.Decimal  `json:"preco_custo"`
	PrecoVenda         *decimal.Decimal  `json:"preco_venda"`
	EstoqueMin         *int              `json:"estoque_minimo" validate:"omitempty,min=0"`
	UnidadeMedida      *string           `json:"unidade_medida"`
	FornecedorID       *string           `json:"fornecedor_id" validate:"omitempty,uuid"`
	Atributos          map[string]string `json:"atributos"`
	TemValidade        *bool             `json:"tem_validade"`
	DataValidade       *string           `json:"data_validade"        validate:"omitempty,datetime=2006-01-02"`
	DiasAlertaValidade *int              `json:"dias_alerta_validade" validate:"omitempty,min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProdutoFilter struct {
	Codigo       string `form:"codigo"`
	CodigoBarras string `form:"codigo_barras"`
	Nome         string `form:"nome"`
	Categoria    string `form:"categoria"`
	FornecedorID string `form:"fornecedor_id"`
	Ativo        string `form:"ativo"` // "false" = inativos, "all" = todos, default = ativos
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProdutoResponse struct {
	ID                 string            `json:"id"`
	Codigo             string            `json:"codigo"`
	CodigoBarras       *string           `json:"codigo_barras"`
	Nome               string            `json:"nome"`
	Descricao          *string           `json:"descricao"`
	Categoria          string            `json:"categoria"`
	PrecoCusto         decimal.Decimal   `json:"preco_custo"`
	PrecoVenda         decimal.Decimal   `json:"preco_venda"`
	EstoqueAtual       int               `json:"estoque_atual"`
	EstoqueMin         int               `json:"estoque_minimo"`
	UnidadeMedida      string            `json:"unidade_medida"`
	FornecedorID       *string           `json:"fornecedor_id"`
	Atributos          map[string]string `json:"atributos"`
	TemValidade        bool              `json:"tem_validade"`
	DataValidade       *string           `json:"data_validade"`
	DiasAlertaValidade int               `json:"dias_alerta_validade"`
	Ativo              bool              `json:"ativo"`
	AbaixoDoMinimo     bool              `json:"abaixo_do_minimo"`
}

type ProdutoListResponse struct {
	Data  []ProdutoResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
