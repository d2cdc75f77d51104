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

// PDVHandler expõe o ciclo completo do ponto de venda: sessão de carrinho,
// itens, descontos, pagamento e fechamento.
type PDVHandler struct {
	carrinho service.CarrinhoService
	venda    service.VendaService
}

func NewPDVHandler(carrinho service.CarrinhoService, venda service.VendaService) *PDVHandler {
	return &PDVHandler{carrinho: carrinho, venda: venda}
}

// AbrirSessao godoc
// @Summary Abre uma sessão de carrinho
// @Tags pdv
// @Produce json
// @Success 201 {object} map[string]string
// @Router /v1/pdv/sessoes [post]
func (h *PDVHandler) AbrirSessao(c *gin.Context) {
	sessaoID, err := h.carrinho.AbrirSessao(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao abrir sessão"))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"sessao_id": sessaoID})
}

func (h *PDVHandler) Obter(c *gin.Context) {
	resp, err := h.carrinho.Obter(c.Request.Context(), c.Param("sessao_id"))
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PDVHandler) AdicionarItem(c *gin.Context) {
	var req dto.AdicionarItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.carrinho.AdicionarItem(c.Request.Context(), c.Param("sessao_id"), req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PDVHandler) DefinirQuantidade(c *gin.Context) {
	produtoID, err := uuid.Parse(c.Param("produto_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.DefinirQuantidadeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.carrinho.DefinirQuantidade(c.Request.Context(), c.Param("sessao_id"), produtoID, req.Quantidade)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PDVHandler) DefinirDescontoItem(c *gin.Context) {
	produtoID, err := uuid.Parse(c.Param("produto_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	var req dto.DefinirDescontoItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.carrinho.DefinirDescontoItem(c.Request.Context(), c.Param("sessao_id"), produtoID, req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PDVHandler) RemoverItem(c *gin.Context) {
	produtoID, err := uuid.Parse(c.Param("produto_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return
	}
	resp, err := h.carrinho.RemoverItem(c.Request.Context(), c.Param("sessao_id"), produtoID)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PDVHandler) DefinirDescontoGeral(c *gin.Context) {
	var req dto.DescontoGeralRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.carrinho.DefinirDescontoGeral(c.Request.Context(), c.Param("sessao_id"), req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PDVHandler) DefinirPagamento(c *gin.Context) {
	var req dto.PagamentoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.carrinho.DefinirPagamento(c.Request.Context(), c.Param("sessao_id"), req)
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PDVHandler) Limpar(c *gin.Context) {
	if err := h.carrinho.Limpar(c.Request.Context(), c.Param("sessao_id")); err != nil {
		respondErro(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Finalizar godoc
// @Summary Fecha a venda da sessão: valida, confirma estoque e emite o recibo
// @Tags pdv
// @Produce json
// @Param sessao_id path string true "ID da sessão"
// @Success 200 {object} dto.Recibo
// @Failure 409 {object} apierror.APIError "Estoque insuficiente na revalidação"
// @Failure 422 {object} apierror.APIError "Pagamento ou crédito insuficiente"
// @Router /v1/pdv/sessoes/{sessao_id}/finalizar [post]
func (h *PDVHandler) Finalizar(c *gin.Context) {
	claims := middleware.GetClaims(c)
	usuarioID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Token inválido"))
		return
	}
	recibo, err := h.venda.Finalizar(c.Request.Context(), usuarioID, c.Param("sessao_id"))
	if err != nil {
		respondErro(c, err)
		return
	}
	c.JSON(http.StatusOK, recibo)
}
