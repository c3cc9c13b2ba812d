package parser

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"contestacao-backend/models"

	"go.uber.org/zap"
)

// Sentinel messages stored in CaseData.Error
const (
	ErrMessageInvalidJSON  = "JSON inválido no resultado"
	ErrMessageJSONNotFound = "JSON não encontrado no resultado"
)

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	// shapeJSONPattern finds an unfenced object that ends with the "pedidos" list
	shapeJSONPattern = regexp.MustCompile(`(\{[\s\S]*?"pedidos"\s*:\s*\[[\s\S]*?\]\s*\})`)
)

// ExtractResponse separates the JSON block from the contestation text.
// A missing or malformed block never fails: the sentinel CaseData is returned
// and the whole response is treated as contestation text.
func ExtractResponse(raw string) (models.CaseData, string) {
	loc := fencedJSONPattern.FindStringSubmatchIndex(raw)
	if loc == nil {
		loc = shapeJSONPattern.FindStringSubmatchIndex(raw)
	}
	if loc == nil {
		zap.L().Warn("JSON block not found in model response", zap.Int("chars", len(raw)))
		return models.NewCaseDataError(ErrMessageJSONNotFound), raw
	}

	block := raw[loc[2]:loc[3]]
	data, err := DecodeCaseData(block)
	if err != nil {
		zap.L().Error("failed to decode JSON block",
			zap.Int("chars", len(raw)),
			zap.Int("block_chars", len(block)),
			zap.Error(err),
		)
		return models.NewCaseDataError(ErrMessageInvalidJSON), raw
	}

	contestation := strings.TrimSpace(raw[loc[1]:])
	zap.L().Info("JSON block extracted",
		zap.Int("block_chars", len(block)),
		zap.Int("contestation_chars", len(contestation)),
	)
	return data, contestation
}

// DecodeCaseData decodes a JSON object into CaseData. Fields with an
// unexpected type are left empty instead of failing the whole block.
func DecodeCaseData(block string) (models.CaseData, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return models.CaseData{}, err
	}

	var data models.CaseData
	if err := json.Unmarshal([]byte(block), &data); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return models.CaseData{}, err
		}
		zap.L().Warn("JSON block has fields with unexpected types", zap.Error(err))
	}

	// An "error" key from the model is data, not the sentinel.
	data.Error = ""
	data.Raw = raw
	data.Normalize()
	return data, nil
}
