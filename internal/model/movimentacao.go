package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de movimentação de estoque.
const (
	MovimentacaoEntrada = "entrada"
	MovimentacaoSaida   = "saida"
)

// Movimentacao é um lançamento imutável no ledger de estoque. Nunca é
// editada: corrigir um erro significa estornar (delete + delta compensatório)
// e lançar de novo. Nome e código do produto são desnormalizados para que o
// histórico sobreviva a renomeações do cadastro.
type Movimentacao struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProdutoID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ProdutoNome   string    `gorm:"not null"`
	ProdutoCodigo string    `gorm:"not null"`
	Tipo          string    `gorm:"type:varchar(10);not null"` // entrada | saida
	Quantidade    int       `gorm:"not null"`                  // sempre > 0; o sinal vem do Tipo
	// ValorUnitario é um snapshot: preco_custo para entrada, preco_venda para
	// saida, no momento do lançamento. Correções de preço posteriores não
	// alteram o histórico.
	ValorUnitario   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ValorTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EstoqueAnterior int             `gorm:"not null"`
	EstoqueNovo     int             `gorm:"not null"`
	Observacao      string
	// Contexto de venda — preenchido apenas em saidas originadas no PDV.
	VendaID         *uuid.UUID       `gorm:"type:uuid;index"`
	ClienteID       *uuid.UUID       `gorm:"type:uuid"`
	MetodoPagamento *string          `gorm:"type:varchar(20)"`
	ValorRecebido   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Troco           *decimal.Decimal `gorm:"type:decimal(12,2)"`
	UsuarioID       uuid.UUID        `gorm:"type:uuid;not null"`
	CreatedAt       time.Time        `gorm:"index"`

	Produto *Produto `gorm:"foreignKey:ProdutoID"`
}

// TableName overrides GORM's default pluralization (movimentacaos → movimentacoes).
func (Movimentacao) TableName() string { return "movimentacoes" }

// DeltaEstoque retorna o delta com sinal que esta movimentação aplicou ao
// estoque: +Quantidade para entrada, -Quantidade para saida.
func (m *Movimentacao) DeltaEstoque() int {
	if m.Tipo == MovimentacaoEntrada {
		return m.Quantidade
	}
	return -m.Quantidade
}
