package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente é usado pelo PDV para vendas no crediário: a venda só fecha quando
// o total cabe no limite de crédito do cliente.
type Cliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome          string    `gorm:"index;not null"`
	Telefone      *string
	Email         *string
	LimiteCredito decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Ativo         bool            `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Cliente) TableName() string { return "clientes" }
