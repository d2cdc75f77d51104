package handler

import (
	"net/http"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/apierror"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/middleware"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type MovimentacoesHandler struct{ svc service.EstoqueService }

func NewMovimentacoesHandler(svc service.EstoqueService) *MovimentacoesHandler {
	return &MovimentacoesHandler{svc: svc}
}

// Registrar godoc
// @Summary Registra uma movimentação manual de estoque
// @Tags movimentacoes
// @Accept json
// @Produce json
// @Param body body dto.RegistrarMovimentacaoRequest true "Movimentação"
// @Success 201 {object} dto.MovimentacaoResponse
// @Failure 409 {object} apierror.APIError "Estoque ficaria negativo"
// @Router /v1/movimentacoes [post]
func (h *MovimentacoesHandler) Registrar(c *gin.Context) {
	var req dto.RegistrarMovimentacaoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	resp, err := h.svc.RegistrarMovimentacao(c.Request.Context(), usuarioID, req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *MovimentacoesHandler) Listar(c *gin.Context) {
	var filter dto.MovimentacaoFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("Filtro inválido: "+err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao listar movimentações"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Estornar godoc
// @Summary Estorna uma movimentação (compensação de estoque + remoção)
// @Tags movimentacoes
// @Produce json
// @Param id path string true "ID da movimentação"
// @Success 204
// @Failure 409 {object} apierror.APIError "Estorno deixaria o estoque negativo"
// @Router /v1/movimentacoes/{id} [delete]
func (h *MovimentacoesHandler) Estornar(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	if err := h.svc.Estornar(c.Request.Context(), usuarioID, id); err != nil {
		respondErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
