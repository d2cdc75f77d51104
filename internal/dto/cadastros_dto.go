package dto

import "github.com/shopspring/decimal"

// DTOs dos cadastros de apoio (clientes, categorias, fornecedores).

// ─── Clientes ────────────────────────────────────────────────────────────────

type CriarClienteRequest struct {
	Nome          string          `json:"nome"     validate:"required,min=2,max=120"`
	Telefone      *string         `json:"telefone"`
	Email         *string         `json:"email"    validate:"omitempty,email"`
	LimiteCredito decimal.Decimal `json:"limite_credito" validate:"min=0"`
}

type AtualizarClienteRequest struct {
	Nome          *string          `json:"nome"     validate:"omitempty,min=2,max=120"`
	Telefone      *string          `json:"telefone"`
	Email         *string          `json:"email"    validate:"omitempty,email"`
	LimiteCredito *decimal.Decimal `json:"limite_credito"`
}

type ClienteResponse struct {
	ID            string          `json:"id"`
	Nome          string          `json:"nome"`
	Telefone      *string         `json:"telefone"`
	Email         *string         `json:"email"`
	LimiteCredito decimal.Decimal `json:"limite_credito"`
	Ativo         bool            `json:"ativo"`
}

// ─── Categorias ──────────────────────────────────────────────────────────────

type CriarCategoriaRequest struct {
	Nome         string            `json:"nome" validate:"required,min=2,max=60"`
	Descricao    *string           `json:"descricao"`
	CamposExtras map[string]string `json:"campos_extras"`
}

type CategoriaResponse struct {
	ID           string            `json:"id"`
	Nome         string            `json:"nome"`
	Descricao    *string           `json:"descricao"`
	CamposExtras map[string]string `json:"campos_extras"`
	Ativo        bool              `json:"ativo"`
}

// ─── Fornecedores ────────────────────────────────────────────────────────────

type CriarFornecedorRequest struct {
	RazaoSocial string  `json:"razao_social" validate:"required,min=2,max=120"`
	CNPJ        *string `json:"cnpj"     validate:"omitempty,min=14,max=18"`
	Telefone    *string `json:"telefone"`
	Email       *string `json:"email"    validate:"omitempty,email"`
	Endereco    *string `json:"endereco"`
}

type FornecedorResponse struct {
	ID          string  `json:"id"`
	RazaoSocial string  `json:"razao_social"`
	CNPJ        *string `json:"cnpj"`
	Telefone    *string `json:"telefone"`
	Email       *string `json:"email"`
	Endereco    *string `json:"endereco"`
	Ativo       bool    `json:"ativo"`
}
