package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
	"mibe/internal/models/response_models"
)

const excessSheet = "Excedentes"

var excessHeader = []interface{}{
	"Estabelecimento", "Plano", "Limite de usuários", "Usuários", "Excedente", "Valor excedente (R$)", "Status",
}

// WriteExcessWorkbook renders the excess report as an xlsx file.
func WriteExcessWorkbook(subs []response_models.Subscription) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), excessSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(excessSheet, "A1", &excessHeader); err != nil {
		return nil, err
	}

	for i, s := range subs {
		limit := interface{}("")
		if s.PlanUserLimit != nil {
			limit = *s.PlanUserLimit
		}
		amount, _ := s.ExcessAmount.Round(2).Float64()
		row := []interface{}{
			derefOr(s.CompanyName, s.CompanyID),
			derefOr(s.PlanName, s.PlanID),
			limit,
			s.CurrentProfileCount,
			s.ExcessProfiles,
			amount,
			s.Status,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(excessSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func derefOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}
