package tests

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/infra"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Circuit breaker do SMTP ──────────────────────────────────────────────────

func cbCurto() *infra.CircuitBreaker {
	return infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      50 * time.Millisecond,
	})
}

func TestCircuitBreakerAbreAposFalhas(t *testing.T) {
	cb := cbCurto()
	boom := errors.New("smtp fora do ar")
	falha := func() error { return boom }

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(falha), boom)
	}
	assert.Equal(t, infra.CBOpen, cb.State())

	// Aberto: fast-fail sem tocar no fn.
	chamado := false
	err := cb.Execute(func() error { chamado = true; return nil })
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.False(t, chamado)
}

func TestCircuitBreakerRecupera(t *testing.T) {
	cb := cbCurto()
	boom := errors.New("smtp fora do ar")
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return boom })
	}
	require.Equal(t, infra.CBOpen, cb.State())

	// Passado o timeout o CB sonda; dois sucessos fecham de novo.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, infra.CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestCircuitBreakerFalhaNaSondaReabre(t *testing.T) {
	cb := cbCurto()
	boom := errors.New("smtp fora do ar")
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return boom })
	}
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, infra.CBHalfOpen, cb.State())

	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, infra.CBOpen, cb.State())
}

func TestCircuitBreakerFechadoZeraContagem(t *testing.T) {
	cb := cbCurto()
	boom := errors.New("smtp instável")

	// Falhas intercaladas com sucesso nunca chegam ao limiar.
	for i := 0; i < 10; i++ {
		_ = cb.Execute(func() error { return boom })
		_ = cb.Execute(func() error { return boom })
		require.NoError(t, cb.Execute(func() error { return nil }))
	}
	assert.Equal(t, infra.CBClosed, cb.State())
}

// ── Cupom em PDF ─────────────────────────────────────────────────────────────

func reciboDeTeste() *dto.Recibo {
	return &dto.Recibo{
		VendaID: uuid.NewString(),
		Itens: []dto.ItemCarrinhoResponse{
			{
				ProdutoID:     uuid.NewString(),
				ProdutoNome:   "Sabonete de glicerina artesanal",
				ProdutoCodigo: "000001",
				Quantidade:    2,
				PrecoUnitario: decimal.NewFromFloat(8.50),
				Subtotal:      decimal.NewFromFloat(17.00),
			},
		},
		Subtotal:      decimal.NewFromFloat(17.00),
		Desconto:      decimal.NewFromFloat(2.00),
		Total:         decimal.NewFromFloat(15.00),
		Metodo:        "dinheiro",
		ValorRecebido: decimal.NewFromFloat(20.00),
		Troco:         decimal.NewFromFloat(5.00),
		DataHora:      time.Now().UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func TestGenerateReciboPDF(t *testing.T) {
	dir := t.TempDir()
	recibo := reciboDeTeste()

	path, err := infra.GenerateReciboPDF(recibo, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "recibo_"+recibo.VendaID+".pdf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	// Assinatura de arquivo PDF.
	conteudo, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(conteudo) > 4 && string(conteudo[:5]) == "%PDF-")
}

func TestGenerateReciboPDFCriaDiretorio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "recibos", "2026")
	_, err := infra.GenerateReciboPDF(reciboDeTeste(), dir)
	require.NoError(t, err)
}
