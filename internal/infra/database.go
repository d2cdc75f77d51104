package infra

import (
	"fmt"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase abre a conexão GORM (pgx por baixo), roda AutoMigrate para
// criar/atualizar as tabelas e aplica os patches SQL idempotentes que o
// AutoMigrate não expressa (índices parciais, CHECK constraints).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Violação de unique vira gorm.ErrDuplicatedKey, que a camada de
		// serviço traduz para erro de domínio.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations aplica AutoMigrate e os patches de esquema. Exportada em
// separado para os testes de integração migrarem um banco recém-criado.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Categoria{},
		&model.Fornecedor{},
		&model.Produto{},
		&model.Movimentacao{},
		&model.Cliente{},
		&model.Usuario{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches roda DDL idempotente que o GORM não expressa. Cada
// statement tem guarda de existência, então re-executar é um no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Defesa em profundidade: a camada de repositório já recusa deltas que
		// negativariam o estoque, mas o banco também nunca deve aceitar.
		{"check estoque_atual >= 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_produtos_estoque_nao_negativo') THEN
    ALTER TABLE produtos ADD CONSTRAINT chk_produtos_estoque_nao_negativo CHECK (estoque_atual >= 0);
  END IF;
END $$`},
		{"check movimentacoes.quantidade > 0", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movimentacoes_quantidade_positiva') THEN
    ALTER TABLE movimentacoes ADD CONSTRAINT chk_movimentacoes_quantidade_positiva CHECK (quantidade > 0);
  END IF;
END $$`},
		// Índice parcial para o relatório de validade: só produtos ativos com
		// controle de validade entram na varredura.
		{"partial index produtos com validade", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_produtos_validade_ativos') THEN
    CREATE INDEX idx_produtos_validade_ativos
        ON produtos (data_validade)
        WHERE ativo = true AND tem_validade = true;
  END IF;
END $$`},
		// A listagem do ledger é quase sempre por produto + data desc.
		{"index movimentacoes por produto e data", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movimentacoes_produto_data') THEN
    CREATE INDEX idx_movimentacoes_produto_data
        ON movimentacoes (produto_id, created_at DESC);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
