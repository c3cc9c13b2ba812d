package models

// Placeholders shown in the output document when metadata is missing
const (
	PlaceholderForum         = "[FORO]"
	PlaceholderDistrict      = "SÃO PAULO"
	PlaceholderProcessNumber = "[NÚMERO DO PROCESSO]"
	PlaceholderPlaintiff     = "[AUTOR]"
	PlaceholderDefendant     = "[RÉU]"
	PlaceholderLawyerName    = "[NOME DO ADVOGADO]"
	PlaceholderLawyerState   = "XX"
	PlaceholderLawyerNumber  = "000000"
)

// RenderModel holds everything needed to produce a contestation document
type RenderModel struct {
	Forum         string          `json:"foro"`
	District      string          `json:"comarca"`
	ProcessNumber string          `json:"numero_processo"`
	PlaintiffName string          `json:"autor_nome"`
	DefendantName string          `json:"reu_nome"`
	LawyerName    string          `json:"advogado_nome"`
	LawyerState   string          `json:"advogado_estado"`
	LawyerNumber  string          `json:"advogado_numero"`
	Sections      []RenderSection `json:"secoes"`
}

// RenderSection is a top-level section reduced to a title and its paragraphs
type RenderSection struct {
	Title      string   `json:"titulo"`
	Paragraphs []string `json:"paragrafos"`
}

// WithDefaults returns a copy with placeholders for every empty field
func (m RenderModel) WithDefaults() RenderModel {
	m.Forum = orDefault(m.Forum, PlaceholderForum)
	m.District = orDefault(m.District, PlaceholderDistrict)
	m.ProcessNumber = orDefault(m.ProcessNumber, PlaceholderProcessNumber)
	m.PlaintiffName = orDefault(m.PlaintiffName, PlaceholderPlaintiff)
	m.DefendantName = orDefault(m.DefendantName, PlaceholderDefendant)
	m.LawyerName = orDefault(m.LawyerName, PlaceholderLawyerName)
	m.LawyerState = orDefault(m.LawyerState, PlaceholderLawyerState)
	m.LawyerNumber = orDefault(m.LawyerNumber, PlaceholderLawyerNumber)
	if m.Sections == nil {
		m.Sections = []RenderSection{}
	}
	return m
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
