package repository

import (
	"context"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoriaRepository interface {
	Create(ctx context.Context, c *model.Categoria) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error)
	FindByNome(ctx context.Context, nome string) (*model.Categoria, error)
	List(ctx context.Context) ([]model.Categoria, error)
	Update(ctx context.Context, c *model.Categoria) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type categoriaRepo struct{ db *gorm.DB }

func NewCategoriaRepository(db *gorm.DB) CategoriaRepository { return &categoriaRepo{db: db} }

func (r *categoriaRepo) Create(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *categoriaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepo) FindByNome(ctx context.Context, nome string) (*model.Categoria, error) {
	var c model.Categoria
	err := r.db.WithContext(ctx).Where("nome = ? AND ativo = true", nome).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoriaRepo) List(ctx context.Context) ([]model.Categoria, error) {
	var categorias []model.Categoria
	err := r.db.WithContext(ctx).Where("ativo = true").Order("nome ASC").Find(&categorias).Error
	return categorias, err
}

func (r *categoriaRepo) Update(ctx context.Context, c *model.Categoria) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *categoriaRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Categoria{}).Where("id = ?", id).Update("ativo", false).Error
}
