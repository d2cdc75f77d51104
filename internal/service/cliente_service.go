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

type ClienteService interface {
	Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error)
	ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, busca string) ([]dto.ClienteResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error)
	Desativar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Criar(ctx context.Context, req dto.CriarClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nome:          req.Nome,
		Telefone:      req.Telefone,
		Email:         req.Email,
		LimiteCredito: req.LimiteCredito,
		Ativo:         true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) ObterPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNaoEncontrado
		}
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context, busca string) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, busca)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClienteResponse, 0, len(clientes))
	for idx := range clientes {
		resp = append(resp, *clienteToResponse(&clientes[idx]))
	}
	return resp, nil
}

func (s *clienteService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNaoEncontrado
		}
		return nil, err
	}
	if req.Nome != nil {
		c.Nome = *req.Nome
	}
	if req.Telefone != nil {
		c.Telefone = req.Telefone
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.LimiteCredito != nil {
		c.LimiteCredito = *req.LimiteCredito
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Desativar(ctx context.Context, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id)
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:            c.ID.String(),
		Nome:          c.Nome,
		Telefone:      c.Telefone,
		Email:         c.Email,
		LimiteCredito: c.LimiteCredito,
		Ativo:         c.Ativo,
	}
}
