package service

import (
	"context"
	"errors"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/model"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FornecedorService interface {
	Criar(ctx context.Context, req dto.CriarFornecedorRequest) (*dto.FornecedorResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.FornecedorResponse, error)
	Listar(ctx context.Context, busca string) ([]dto.FornecedorResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.CriarFornecedorRequest) (*dto.FornecedorResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type fornecedorService struct {
	repo repository.FornecedorRepository
}

func NewFornecedorService(repo repository.FornecedorRepository) FornecedorService {
	return &fornecedorService{repo: repo}
}

func (s *fornecedorService) Criar(ctx context.Context, req dto.CriarFornecedorRequest) (*dto.FornecedorResponse, error) {
	f := &model.Fornecedor{
		RazaoSocial: req.RazaoSocial,
		CNPJ:        req.CNPJ,
		Telefone:    req.Telefone,
		Email:       req.Email,
		Endereco:    req.Endereco,
		Ativo:       true,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return fornecedorToResponse(f), nil
}

func (s *fornecedorService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.FornecedorResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFornecedorNaoEncontrado
		}
		return nil, err
	}
	return fornecedorToResponse(f), nil
}

func (s *fornecedorService) Listar(ctx context.Context, busca string) ([]dto.FornecedorResponse, error) {
	fornecedores, err := s.repo.List(ctx, busca)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FornecedorResponse, 0, len(fornecedores))
	for idx := range fornecedores {
		resp = append(resp, *fornecedorToResponse(&fornecedores[idx]))
	}
	return resp, nil
}

func (s *fornecedorService) Atualizar(ctx context.Context, id uuid.UUID, req dto.CriarFornecedorRequest) (*dto.FornecedorResponse, error) {
	f, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFornecedorNaoEncontrado
		}
		return nil, err
	}
	f.RazaoSocial = req.RazaoSocial
	f.CNPJ = req.CNPJ
	f.Telefone = req.Telefone
	f.Email = req.Email
	f.Endereco = req.Endereco
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return fornecedorToResponse(f), nil
}

func (s *fornecedorService) Desativar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func fornecedorToResponse(f *model.Fornecedor) *dto.FornecedorResponse {
	return &dto.FornecedorResponse{
		ID:          f.ID.String(),
		RazaoSocial: f.RazaoSocial,
		CNPJ:        f.CNPJ,
		Telefone:    f.Telefone,
		Email:       f.Email,
		Endereco:    f.Endereco,
		Ativo:       f.Ativo,
	}
}
