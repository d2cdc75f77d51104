package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Produto é o cadastro de um item vendável. O estoque nunca é editado
// diretamente: toda mutação passa por AplicarDeltaEstoque no repositório,
// pareada com uma Movimentacao no ledger.
type Produto struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo        string    `gorm:"uniqueIndex;not null"` // sequencial, zero-padded ("000042")
	CodigoBarras  *string   `gorm:"uniqueIndex"`
	Nome          string    `gorm:"index;not null"`
	Descricao     *string
	Categoria     string          `gorm:"not null"`
	PrecoCusto    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecoVenda    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	EstoqueAtual  int             `gorm:"not null;default:0"`
	EstoqueMin    int             `gorm:"not null;default:0"`
	UnidadeMedida string          `gorm:"not null;default:'unidade'"`
	FornecedorID  *uuid.UUID      `gorm:"type:uuid;index"`
	// Atributos carrega campos extras definidos pela categoria (tamanho, cor,
	// voltagem, ...) como um mapa tipado persistido em JSONB.
	Atributos Atributos `gorm:"type:jsonb"`
	// Controle de validade
	TemValidade        bool `gorm:"not null;default:false"`
	DataValidade       *time.Time
	DiasAlertaValidade int  `gorm:"not null;default:0"`
	Ativo              bool `gorm:"not null;default:true"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Fornecedor *Fornecedor `gorm:"foreignKey:FornecedorID"`
}

// TableName overrides GORM's default pluralization for Portuguese names.
func (Produto) TableName() string { return "produtos" }

// Atributos é um mapa chave→valor serializado como JSONB.
type Atributos map[string]string

func (a Atributos) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *Atributos) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("atributos: tipo inesperado na coluna jsonb")
		}
		b = []byte(s)
	}
	return json.Unmarshal(b, a)
}
