package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a structured rejection from the backend, decoded from the
// {error:{status,name,message}} envelope.
type APIError struct {
	Status  int
	Name    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream rejected request (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("upstream rejected request (%d)", e.Status)
}

type errorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		apiErr.Name = env.Error.Name
		apiErr.Message = env.Error.Message
	}
	return apiErr
}

// Backend messages recognized by the translation table. Matching is by
// substring, the way the web client did it.
var translations = []struct {
	match    string
	friendly string
}{
	{"Email is already taken", "Este e-mail já está cadastrado."},
	{"Username is already taken", "Este nome de usuário já está em uso."},
	{"Invalid identifier or password", "E-mail ou senha incorretos."},
	{"password must be at least", "A senha deve ter no mínimo 6 caracteres."},
	{"Invalid parameters", "Erro de sistema: campos inválidos no servidor."},
	{"insufficient_stock", "Estoque insuficiente para um dos itens do carrinho."},
	{"Incorrect code provided", "Código de confirmação inválido ou expirado."},
}

const (
	genericErrorMessage      = "Ocorreu um erro. Verifique seus dados e tente novamente."
	connectivityErrorMessage = "Falha de conexão com o servidor. Tente novamente."
)

// FriendlyMessage maps an upstream error to a user-facing string. Recognized
// backend messages are translated, unrecognized ones fall back to a generic
// string, transport failures to a connectivity message.
func FriendlyMessage(err error) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return connectivityErrorMessage
	}
	for _, t := range translations {
		if strings.Contains(apiErr.Message, t.match) {
			return t.friendly
		}
	}
	return genericErrorMessage
}
