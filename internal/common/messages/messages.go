// Package messages holds the user-facing texts returned in API envelopes.
// Defaults are Portuguese; a YAML file can override any subset of keys.
package messages

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Key string

const (
	AllFieldsRequired Key = "all_fields_required"
	InvalidEmail      Key = "invalid_email"
	PasswordTooShort  Key = "password_too_short"
	PasswordTooWeak   Key = "password_too_weak"
	EmailTaken        Key = "email_taken"
	UsernameTaken     Key = "username_taken"
	UserNotFound      Key = "user_not_found"
	WrongPassword     Key = "wrong_password"
	UserCreated       Key = "user_created"
	LoginSucceeded    Key = "login_succeeded"
	UsersListed       Key = "users_listed"
	InvalidPayload    Key = "invalid_payload"
	Unauthorized      Key = "unauthorized"
	InternalError     Key = "internal_error"
)

var defaults = map[Key]string{
	AllFieldsRequired: "Todos os campos são obrigatórios",
	InvalidEmail:      "Adicione um email válido",
	PasswordTooShort:  "A senha deve conter pelo menos 8 caracteres",
	PasswordTooWeak:   "A senha deve conter pelo menos uma letra maiúscula, uma letra minúscula, um número e um símbolo",
	EmailTaken:        "Email já cadastrado",
	UsernameTaken:     "Username já cadastrado",
	UserNotFound:      "Usuário não encontrado",
	WrongPassword:     "Senha incorreta",
	UserCreated:       "Usuário criado com sucesso",
	LoginSucceeded:    "Login realizado com sucesso",
	UsersListed:       "Usuários encontrados com sucesso",
	InvalidPayload:    "Corpo da requisição inválido",
	Unauthorized:      "Token de autorização inválido ou ausente",
	InternalError:     "Erro interno do servidor",
}

// Table resolves message keys to texts. The zero value is not usable; use
// Default or Load.
type Table struct {
	texts map[Key]string
}

func Default() *Table {
	texts := make(map[Key]string, len(defaults))
	for k, v := range defaults {
		texts[k] = v
	}
	return &Table{texts: texts}
}

// Load returns the default table overlaid with the YAML mapping in path.
// An empty path yields the defaults.
func Load(path string) (*Table, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read messages file: %w", err)
	}
	if err := t.Merge(raw); err != nil {
		return nil, fmt.Errorf("parse messages file %s: %w", path, err)
	}
	return t, nil
}

// Merge overlays a YAML mapping of key -> text. Unknown keys are rejected so
// that typos in an override file surface at startup.
func (t *Table) Merge(raw []byte) error {
	var overrides map[string]string
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return err
	}
	for k, v := range overrides {
		key := Key(k)
		if _, ok := defaults[key]; !ok {
			return fmt.Errorf("unknown message key %q", k)
		}
		t.texts[key] = v
	}
	return nil
}

// Text returns the text for key, or the key itself when it has none.
func (t *Table) Text(key Key) string {
	if s, ok := t.texts[key]; ok {
		return s
	}
	return string(key)
}
