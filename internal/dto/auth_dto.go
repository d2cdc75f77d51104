package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"` // seconds
	Usuario     UsuarioInfo `json:"usuario"`
}

type UsuarioInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nome     string `json:"nome"`
	Papel    string `json:"papel"`
}

type CriarUsuarioRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=60"`
	Nome     string  `json:"nome"     validate:"required,min=2,max=120"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Papel    string  `json:"papel"    validate:"required,oneof=operador gerente administrador"`
}
