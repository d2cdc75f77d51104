package infra

import (
	"fmt"
	"net/smtp"

	"github.com/rafaelguizi/stockpro-sistema-sub000/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer encapsula a configuração SMTP para envio de e-mails com anexo.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
	}
}

// SendAlertaEstoque envia o aviso de estoque mínimo para o responsável.
func (m *Mailer) SendAlertaEstoque(to, produtoNome, produtoCodigo string, estoqueAtual, estoqueMinimo int) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Estoque baixo: %s (%s)", produtoNome, produtoCodigo)
	e.Text = []byte(fmt.Sprintf(
		"O produto %s (código %s) atingiu o estoque mínimo.\n\nEstoque atual: %d\nEstoque mínimo: %d\n\nReponha o quanto antes.",
		produtoNome, produtoCodigo, estoqueAtual, estoqueMinimo))

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}

// SendRecibo envia o PDF do recibo para o e-mail informado.
func (m *Mailer) SendRecibo(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: anexar PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
