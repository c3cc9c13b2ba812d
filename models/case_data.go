package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// CaseData represents the structured data extracted from a petition by the model
type CaseData struct {
	Processo    Processo      `json:"processo"`
	Autor       Party         `json:"autor"`
	Reu         Party         `json:"reu"`
	Objeto      string        `json:"objeto"`
	Fatos       []Fact        `json:"fatos"`
	Fundamentos []LegalGround `json:"fundamentos"`
	Pedidos     []Claim       `json:"pedidos"`
	Documentos  []Attachment  `json:"documentos"`

	// Error is set instead of the fields above when the block could not be read
	Error string `json:"error,omitempty"`

	// Raw is the decoded JSON object as the model returned it
	Raw map[string]interface{} `json:"-"`
}

// Processo identifies the lawsuit
type Processo struct {
	Numero  string `json:"numero"`
	Comarca string `json:"comarca"`
	Vara    string `json:"vara"`
	Foro    string `json:"foro"`
}

// Party represents the plaintiff or the defendant
type Party struct {
	Nome          string         `json:"nome"`
	CPFCNPJ       string         `json:"cpf_cnpj"`
	CNPJ          string         `json:"cnpj"`
	Qualificacao  string         `json:"qualificacao"`
	Endereco      string         `json:"endereco"`
	Representacao Representation `json:"representacao"`
}

// Representation is the lawyer acting for a party
type Representation struct {
	Advogado string `json:"advogado"`
	OAB      string `json:"oab"`
}

// Fact is one numbered fact alleged in the petition
type Fact struct {
	Numero    string `json:"numero"`
	Descricao string `json:"descricao"`
	Data      string `json:"data"`
	Valor     string `json:"valor"`
}

// LegalGround is one legal argument of the petition
type LegalGround struct {
	Tipo      string   `json:"tipo"`
	Descricao string   `json:"descricao"`
	Artigos   []string `json:"artigos"`
}

// Claim is one request made by the plaintiff
type Claim struct {
	Numero    string `json:"numero"`
	Descricao string `json:"descricao"`
	Valor     string `json:"valor"`
}

// Attachment is a document attached to the petition
type Attachment struct {
	Tipo      string `json:"tipo"`
	Descricao string `json:"descricao"`
}

// NewCaseDataError returns the sentinel value used when the JSON block is unusable
func NewCaseDataError(message string) CaseData {
	return CaseData{
		Error: message,
		Raw:   map[string]interface{}{"error": message},
	}
}

// IsError reports whether the data is the sentinel error value
func (c CaseData) IsError() bool {
	return c.Error != ""
}

// Normalize replaces nil lists with empty ones
func (c *CaseData) Normalize() {
	if c.Fatos == nil {
		c.Fatos = []Fact{}
	}
	if c.Fundamentos == nil {
		c.Fundamentos = []LegalGround{}
	}
	for i := range c.Fundamentos {
		if c.Fundamentos[i].Artigos == nil {
			c.Fundamentos[i].Artigos = []string{}
		}
	}
	if c.Pedidos == nil {
		c.Pedidos = []Claim{}
	}
	if c.Documentos == nil {
		c.Documentos = []Attachment{}
	}
	if c.Raw == nil {
		c.Raw = map[string]interface{}{}
	}
}

// The model sometimes emits list items as bare strings instead of objects,
// so every list item type accepts both shapes.

// UnmarshalJSON implements json.Unmarshaler
func (f *Fact) UnmarshalJSON(data []byte) error {
	if s, ok := bareString(data); ok {
		*f = Fact{Descricao: s}
		return nil
	}
	type plain Fact
	return decodeLenient(data, (*plain)(f))
}

// UnmarshalJSON implements json.Unmarshaler
func (g *LegalGround) UnmarshalJSON(data []byte) error {
	if s, ok := bareString(data); ok {
		*g = LegalGround{Descricao: s}
		return nil
	}
	type plain LegalGround
	return decodeLenient(data, (*plain)(g))
}

// UnmarshalJSON implements json.Unmarshaler
func (c *Claim) UnmarshalJSON(data []byte) error {
	if s, ok := bareString(data); ok {
		*c = Claim{Descricao: s}
		return nil
	}
	type plain Claim
	return decodeLenient(data, (*plain)(c))
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Attachment) UnmarshalJSON(data []byte) error {
	if s, ok := bareString(data); ok {
		*a = Attachment{Descricao: s}
		return nil
	}
	type plain Attachment
	return decodeLenient(data, (*plain)(a))
}

func bareString(data []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, `"`) {
		return "", false
	}
	var s string
	if err := json.Unmarshal([]byte(trimmed), &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeLenient keeps whatever fields decoded when a value has the wrong type
func decodeLenient(data []byte, v interface{}) error {
	err := json.Unmarshal(data, v)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return nil
	}
	return err
}
