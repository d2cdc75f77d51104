package repository

import (
	"context"
	"time"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimentacaoRepository é o acesso ao ledger append-only. Não há Update:
// movimentações só nascem (Create) ou morrem inteiras (Delete, via estorno).
type MovimentacaoRepository interface {
	Create(ctx context.Context, m *model.Movimentacao) error
	CreateTx(tx *gorm.DB, m *model.Movimentacao) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Movimentacao, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, filter dto.MovimentacaoFilter) ([]model.Movimentacao, int64, error)
	CountByProduto(ctx context.Context, produtoID uuid.UUID) (int64, error)
	DB() *gorm.DB
}

type movimentacaoRepo struct{ db *gorm.DB }

func NewMovimentacaoRepository(db *gorm.DB) MovimentacaoRepository {
	return &movimentacaoRepo{db: db}
}

func (r *movimentacaoRepo) Create(ctx context.Context, m *model.Movimentacao) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movimentacaoRepo) CreateTx(tx *gorm.DB, m *model.Movimentacao) error {
	if tx == nil {
		return r.db.Create(m).Error
	}
	return tx.Create(m).Error
}

func (r *movimentacaoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Movimentacao, error) {
	var m model.Movimentacao
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *movimentacaoRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Delete(&model.Movimentacao{}, "id = ?", id).Error
}

func (r *movimentacaoRepo) List(ctx context.Context, filter dto.MovimentacaoFilter) ([]model.Movimentacao, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Movimentacao{})

	if filter.ProdutoID != "" {
		q = q.Where("produto_id = ?", filter.ProdutoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	if filter.Categoria != "" {
		// Categoria é resolvida via produto — o snapshot no ledger não a carrega.
		q = q.Where("produto_id IN (?)",
			r.db.Model(&model.Produto{}).Select("id").Where("categoria = ?", filter.Categoria))
	}
	if filter.Busca != "" {
		like := "%" + filter.Busca + "%"
		q = q.Where("produto_nome ILIKE ? OR produto_codigo ILIKE ? OR observacao ILIKE ?", like, like, like)
	}
	if filter.DataInicio != "" {
		if t, err := time.Parse("2006-01-02", filter.DataInicio); err == nil {
			q = q.Where("created_at >= ?", t)
		}
	}
	if filter.DataFim != "" {
		if t, err := time.Parse("2006-01-02", filter.DataFim); err == nil {
			q = q.Where("created_at < ?", t.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch filter.Ordem {
	case "data_asc":
		q = q.Order("created_at ASC")
	case "produto":
		q = q.Order("produto_nome ASC, created_at DESC")
	case "valor_desc":
		q = q.Order("valor_total DESC")
	default:
		q = q.Order("created_at DESC")
	}

	offset := (filter.Page - 1) * filter.Limit
	var movimentacoes []model.Movimentacao
	err := q.Offset(offset).Limit(filter.Limit).Find(&movimentacoes).Error
	return movimentacoes, total, err
}

func (r *movimentacaoRepo) CountByProduto(ctx context.Context, produtoID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Movimentacao{}).
		Where("produto_id = ?", produtoID).Count(&count).Error
	return count, err
}

func (r *movimentacaoRepo) DB() *gorm.DB { return r.db }
