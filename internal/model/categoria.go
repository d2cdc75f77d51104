package model

import (
	"time"

	"github.com/google/uuid"
)

// Categoria classifica produtos. CamposExtras declara quais chaves de
// Produto.Atributos fazem sentido para a categoria (ex.: "voltagem" em
// eletrônicos) — validação fica a cargo da camada de serviço.
type Categoria struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome         string    `gorm:"uniqueIndex;not null"`
	Descricao    *string
	CamposExtras Atributos `gorm:"type:jsonb"` // chave → rótulo exibido
	Ativo        bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Categoria) TableName() string { return "categorias" }
