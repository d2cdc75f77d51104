package handler

import (
	"net/http"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/apierror"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FornecedoresHandler struct{ svc service.FornecedorService }

func NewFornecedoresHandler(svc service.FornecedorService) *FornecedoresHandler {
	return &FornecedoresHandler{svc: svc}
}

func (h *FornecedoresHandler) Criar(c *gin.Context) {
	var req dto.CriarFornecedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Criar(c.Request.Context(), req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *FornecedoresHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("busca"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar fornecedores"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FornecedoresHandler) ObterPorID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.svc.ObterPorID(c.Request.Context(), id)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FornecedoresHandler) Atualizar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.CriarFornecedorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Atualizar(c.Request.Context(), id, req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FornecedoresHandler) Desativar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	if err := h.svc.Desativar(c.Request.Context(), id); err != nil {
		respondErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
