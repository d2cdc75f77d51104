package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/apierror"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Registra decimal.Decimal como tipo numérico para tags como min=0, gt=0
	// funcionarem sem panic ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate faz o bind do corpo JSON e roda as tags do validator.
// Devolve false e já escreve a resposta de erro quando a validação falha —
// o chamador deve retornar imediatamente sem escrever outra resposta.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondErro traduz erros de domínio para status HTTP. Os serviços devolvem
// sentinelas embrulhadas com %w, então errors.Is resolve a identidade.
func respondErro(c *gin.Context, err error) {
	var parcial *service.ErroCommitParcial

	switch {
	case errors.Is(err, service.ErrProdutoNaoEncontrado),
		errors.Is(err, service.ErrMovimentacaoNaoEncontrada),
		errors.Is(err, service.ErrClienteNaoEncontrado),
		errors.Is(err, service.ErrCategoriaNaoEncontrada),
		errors.Is(err, service.ErrFornecedorNaoEncontrado),
		errors.Is(err, service.ErrSessaoNaoEncontrada):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrEstoqueInsuficiente),
		errors.Is(err, service.ErrEstoqueNegativo):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrLimiteCreditoExcedido),
		errors.Is(err, service.ErrPagamentoInsuficiente),
		errors.Is(err, service.ErrValidacao):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.As(err, &parcial):
		// Estado indeterminado: o cliente precisa dos IDs confirmados para
		// reconciliar, então o detalhe vai completo.
		c.JSON(http.StatusInternalServerError, apierror.New(parcial.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno do servidor"))
	}
}
