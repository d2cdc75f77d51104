package infra

// pdf.go — geração do recibo em PDF com go-pdf/fpdf.
// Formato térmico: cabeçalho, itens (nome, qtd, subtotal), linha de desconto
// quando houver, total em negrito, método de pagamento e troco.
// O arquivo sai em storagePath/recibo_{venda_id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerateReciboPDF grava o recibo de uma venda fechada em PDF.
// storagePath é o diretório de saída (criado se necessário).
// Devolve o caminho absoluto do arquivo gerado.
func GenerateReciboPDF(recibo *dto.Recibo, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: criar diretório: %w", err)
	}

	fileName := fmt.Sprintf("recibo_%s.pdf", recibo.VendaID)
	filePath := filepath.Join(storagePath, fileName)

	// 74mm × 105mm ≈ papel térmico de cupom (tamanho custom; não há "A7" na
	// lista nomeada do fpdf)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // margens somam 8mm

	// ── Cabeçalho ────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, "StockPro", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Recibo de Venda", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Dados da venda ───────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Venda %s", curtoID(recibo.VendaID)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, recibo.DataHora, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Itens ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // nome do produto
	col2 := contentW * 0.16 // qtd
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range recibo.Itens {
		nome := item.ProdutoNome
		if len(nome) > 22 {
			nome = nome[:21] + "…"
		}
		pdf.CellFormat(col1, 5, nome, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("x%d", item.Quantidade), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, "R$"+item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Totais ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	if !recibo.Desconto.IsZero() {
		pdf.CellFormat(col1+col2, 5, "Desconto:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, "-R$"+recibo.Desconto.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, "R$"+recibo.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Pagamento ────────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Pagamento ("+recibo.Metodo+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, "R$"+recibo.ValorRecebido.StringFixed(2), "", 1, "R", false, 0, "")
	if !recibo.Troco.IsZero() {
		pdf.CellFormat(col1+col2, 4, "Troco:", "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 4, "R$"+recibo.Troco.StringFixed(2), "", 1, "R", false, 0, "")
	}

	// ── Rodapé ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Obrigado pela preferência!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: gravar arquivo: %w", err)
	}

	return filePath, nil
}

// curtoID abrevia o UUID da venda para caber no cupom.
func curtoID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
