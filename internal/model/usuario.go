package model

import (
	"time"

	"github.com/google/uuid"
)

// Usuario guarda os usuários do sistema com acesso por papel.
// Papel: "operador" | "gerente" | "administrador"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nome         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Papel        string `gorm:"type:varchar(20);not null"`
	Ativo        bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }
