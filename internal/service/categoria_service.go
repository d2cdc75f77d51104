package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoriaService interface {
	Criar(ctx context.Context, req dto.CriarCategoriaRequest) (*dto.CategoriaResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.CategoriaResponse, error)
	Listar(ctx context.Context) ([]dto.CategoriaResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.CriarCategoriaRequest) (*dto.CategoriaResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type categoriaService struct {
	repo repository.CategoriaRepository
}

func NewCategoriaService(repo repository.CategoriaRepository) CategoriaService {
	return &categoriaService{repo: repo}
}

func (s *categoriaService) Criar(ctx context.Context, req dto.CriarCategoriaRequest) (*dto.CategoriaResponse, error) {
	if existente, err := s.repo.FindByNome(ctx, req.Nome); err == nil && existente != nil {
		return nil, fmt.Errorf("%w: já existe categoria com o nome %q", ErrValidacao, req.Nome)
	}
	c := &model.Categoria{
		Nome:         req.Nome,
		Descricao:    req.Descricao,
		CamposExtras: model.Atributos(req.CamposExtras),
		Ativo:        true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return categoriaToResponse(c), nil
}

func (s *categoriaService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.CategoriaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoriaNaoEncontrada
		}
		return nil, err
	}
	return categoriaToResponse(c), nil
}

func (s *categoriaService) Listar(ctx context.Context) ([]dto.CategoriaResponse, error) {
	categorias, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.CategoriaResponse, 0, len(categorias))
	for idx := range categorias {
		resp = append(resp, *categoriaToResponse(&categorias[idx]))
	}
	return resp, nil
}

func (s *categoriaService) Atualizar(ctx context.Context, id uuid.UUID, req dto.CriarCategoriaRequest) (*dto.CategoriaResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoriaNaoEncontrada
		}
		return nil, err
	}
	c.Nome = req.Nome
	c.Descricao = req.Descricao
	if req.CamposExtras != nil {
		c.CamposExtras = model.Atributos(req.CamposExtras)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return categoriaToResponse(c), nil
}

func (s *categoriaService) Desativar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func categoriaToResponse(c *model.Categoria) *dto.CategoriaResponse {
	return &dto.CategoriaResponse{
		ID:           c.ID.String(),
		Nome:         c.Nome,
		Descricao:    c.Descricao,
		CamposExtras: c.CamposExtras,
		Ativo:        c.Ativo,
	}
}
