// Package apierror padroniza o envelope de erro das respostas HTTP.
// Todo erro devolvido ao cliente passa por aqui — nunca vazamos detalhes
// internos (stack traces, erros do banco etc.).
package apierror

// APIError é o envelope canônico de toda resposta 4xx/5xx.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError agrega erros por campo.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validação", Fields: fields}
}
