package auth

import "github.com/goliatone/go-errors"

// Response copy shown to end users
const (
	messageWelcome        = "Bem-vindo à vIAbilize!"
	messageSignedUp       = "Usuário cadastrado com sucesso! Um código de verificação foi enviado para seu email."
	messageCodeResent     = "Novo código enviado com sucesso. Verifique seu e-mail."
	messageVerified       = "Código OTP verificado com sucesso! Seu cadastro está completo."
	messageLoggedOut      = "Logout realizado com sucesso."
	messageInternalError  = "Ocorreu um erro inesperado no servidor."
	messageInvalidPayload = "Dados inválidos."
)

var errorDetails = map[string]string{
	TextCodeUserNotFound:       "Usuário não encontrado.",
	TextCodeIncorrectPassword:  "Senha incorreta. Por favor, tente novamente.",
	TextCodeEmailNotVerified:   "Por favor, verifique seu email antes de fazer login.",
	TextCodeDuplicateEmail:     "E-mail já cadastrado.",
	TextCodeRegistrationFailed: "Erro ao cadastrar usuário.",
	TextCodeAlreadyVerified:    "Este usuário já foi verificado.",
	TextCodeInvalidCode:        "Código inválido.",
	TextCodeOTPExpired:         "Código expirado. Solicite um novo código.",
	TextCodeUnauthenticated:    "Não foi possível autenticar a credencial.",
	TextCodeTokenExpired:       "Não foi possível autenticar a credencial.",
	TextCodeTokenMalformed:     "Não foi possível autenticar a credencial.",
	TextCodeEmptyPassword:      "A senha não pode ser vazia.",
}

func localizedDetail(err *errors.Error) string {
	if msg, ok := errorDetails[err.TextCode]; ok {
		return msg
	}
	return err.Message
}
