package worker

// recibo_worker.go
// Consome QueueRecibo: materializa o recibo da venda em PDF. O artefato
// estruturado já foi devolvido ao caixa na resposta do fechamento; o PDF é
// a via de impressão/arquivamento e pode chegar alguns segundos depois.

import (
	"context"
	"encoding/json"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"
	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReciboWorker processa jobs de QueueRecibo.
type ReciboWorker struct {
	rdb            *redis.Client
	pdfStoragePath string
}

func NewReciboWorker(rdb *redis.Client, pdfStoragePath string) *ReciboWorker {
	return &ReciboWorker{rdb: rdb, pdfStoragePath: pdfStoragePath}
}

// Process gera o PDF do recibo. Falha de geração vai para a DLQ com o
// payload completo — o recibo pode ser regerado manualmente a partir dele.
func (w *ReciboWorker) Process(ctx context.Context, raw json.RawMessage) {
	var recibo dto.Recibo
	if err := json.Unmarshal(raw, &recibo); err != nil {
		log.Error().Err(err).Msg("recibo_worker: payload inválido")
		return
	}
	if recibo.VendaID == "" {
		log.Warn().Msg("recibo_worker: venda_id vazio — descartando")
		return
	}

	pdfPath, err := infra.GenerateReciboPDF(&recibo, w.pdfStoragePath)
	if err != nil {
		log.Error().Err(err).Str("venda_id", recibo.VendaID).Msg("recibo_worker: geração do PDF falhou")
		SendToDLQ(ctx, w.rdb, QueueRecibo, "recibo", raw, err.Error(), 1)
		return
	}
	log.Info().Str("venda_id", recibo.VendaID).Str("pdf", pdfPath).Msg("recibo_worker: PDF gerado")
}
