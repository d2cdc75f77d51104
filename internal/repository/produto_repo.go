package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrDeltaNegaEstoque é devolvido por AplicarDeltaEstoqueTx quando o delta
// deixaria estoque_atual abaixo de zero. A camada de serviço traduz para o
// erro de domínio correspondente.
var ErrDeltaNegaEstoque = errors.New("delta deixaria estoque negativo")

// ProdutoRepository define o contrato de acesso a dados de produtos.
// Serviços dependem desta interface, não da implementação GORM, o que permite
// stubs em memória nos testes unitários.
type ProdutoRepository interface {
	Create(ctx context.Context, p *model.Produto) error
	CreateTx(tx *gorm.DB, p *model.Produto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error)
	FindByCodigoBarras(ctx context.Context, codigo string) (*model.Produto, error)
	List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error)
	ListVencendo(ctx context.Context) ([]model.Produto, error)
	Update(ctx context.Context, p *model.Produto) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Reativar(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error

	// ProximoCodigo reserva o próximo código sequencial dentro da tx. Com tx
	// real a reserva segura um advisory lock até o commit, então dois cadastros
	// concorrentes nunca leem o mesmo MAX(codigo).
	ProximoCodigo(ctx context.Context, tx *gorm.DB) (int, error)

	// AplicarDeltaEstoqueTx é o ÚNICO ponto de mutação de estoque_atual.
	// O UPDATE carrega a guarda de não-negatividade na cláusula WHERE, então
	// dois fechamentos concorrentes sobre o mesmo produto serializam no banco
	// e o perdedor recebe ErrDeltaNegaEstoque em vez de gravar estoque < 0.
	// Aceita tx nil (modo stub em testes unitários).
	AplicarDeltaEstoqueTx(tx *gorm.DB, id uuid.UUID, delta int) (*model.Produto, error)

	// DB expõe o *gorm.DB para os serviços abrirem transações.
	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) Create(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *produtoRepo) CreateTx(tx *gorm.DB, p *model.Produto) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(p).Error
}

func (r *produtoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) FindByCodigoBarras(ctx context.Context, codigo string) (*model.Produto, error) {
	var p model.Produto
	err := r.db.WithContext(ctx).Where("codigo_barras = ? AND ativo = true", codigo).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) List(ctx context.Context, filter dto.ProdutoFilter) ([]model.Produto, int64, error) {
	var produtos []model.Produto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Produto{})

	switch filter.Ativo {
	case "false":
		q = q.Where("ativo = false")
	case "all":
		// sem filtro
	default:
		q = q.Where("ativo = true")
	}

	if filter.Codigo != "" {
		q = q.Where("codigo = ?", filter.Codigo)
	}
	if filter.CodigoBarras != "" {
		q = q.Where("codigo_barras = ?", filter.CodigoBarras)
	}
	if filter.Nome != "" {
		q = q.Where("nome ILIKE ?", "%"+filter.Nome+"%")
	}
	if filter.Categoria != "" {
		q = q.Where("categoria = ?", filter.Categoria)
	}
	if filter.FornecedorID != "" {
		q = q.Where("fornecedor_id = ?", filter.FornecedorID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nome ASC").Limit(filter.Limit).Offset(offset).Find(&produtos).Error
	return produtos, total, err
}

// ListVencendo retorna produtos ativos com validade dentro da janela de
// alerta configurada em cada produto.
func (r *produtoRepo) ListVencendo(ctx context.Context) ([]model.Produto, error) {
	var produtos []model.Produto
	err := r.db.WithContext(ctx).
		Where("ativo = true AND tem_validade = true AND data_validade IS NOT NULL").
		Where("data_validade <= NOW() + (dias_alerta_validade || ' days')::interval").
		Order("data_validade ASC").
		Find(&produtos).Error
	return produtos, err
}

func (r *produtoRepo) Update(ctx context.Context, p *model.Produto) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *produtoRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).Where("id = ?", id).Update("ativo", false).Error
}

func (r *produtoRepo) Reativar(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Produto{}).Where("id = ?", id).Update("ativo", true).Error
}

func (r *produtoRepo) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Produto{}, "id = ?", id).Error
}

func (r *produtoRepo) ProximoCodigo(ctx context.Context, tx *gorm.DB) (int, error) {
	db := tx
	if db == nil {
		db = r.db.WithContext(ctx)
	} else {
		// Serializa a reserva entre transações concorrentes; o lock é liberado
		// no commit/rollback.
		if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext('produtos_codigo'))").Error; err != nil {
			return 0, fmt.Errorf("lock do próximo código: %w", err)
		}
	}
	var max int
	err := db.Model(&model.Produto{}).
		Select("COALESCE(MAX(codigo::int), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("próximo código: %w", err)
	}
	return max + 1, nil
}

func (r *produtoRepo) AplicarDeltaEstoqueTx(tx *gorm.DB, id uuid.UUID, delta int) (*model.Produto, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	res := db.Model(&model.Produto{}).
		Where("id = ? AND estoque_atual + ? >= 0", id, delta).
		Update("estoque_atual", gorm.Expr("estoque_atual + ?", delta))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Distingue produto inexistente de guarda de não-negatividade.
		var count int64
		if err := db.Model(&model.Produto{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, ErrDeltaNegaEstoque
	}

	var p model.Produto
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *produtoRepo) DB() *gorm.DB { return r.db }
