// Package export renders campaign analytics as spreadsheets.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ignite/travel-crm/internal/domain"
)

const (
	SummarySheet   = "Summary"
	CampaignsSheet = "Campaigns"
)

var campaignColumns = []string{
	"campaign_id", "template_id", "template_name",
	"sent", "delivered", "opened", "clicked", "bounced", "unsubscribed",
	"open_rate", "click_rate", "bounce_rate", "ctr", "unsubscribe_rate",
}

// CampaignReport builds a workbook with a tenant summary sheet and one row
// per campaign. Rates are whole percentages, as in the API.
func CampaignReport(summary domain.CampaignSummary, metrics []domain.CampaignMetrics) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(CampaignsSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(0)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSummary(f, summary, headerStyle); err != nil {
		return nil, err
	}
	if err := writeCampaigns(f, metrics, headerStyle); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSummary(f *excelize.File, s domain.CampaignSummary, style int) error {
	rows := [][]any{
		{"metric", "value"},
		{"total_campaigns", s.TotalCampaigns},
		{"total_sent", s.TotalSent},
		{"total_delivered", s.TotalDelivered},
		{"total_opened", s.TotalOpened},
		{"total_clicked", s.TotalClicked},
		{"avg_open_rate", s.AvgOpenRate},
		{"avg_click_rate", s.AvgClickRate},
		{"avg_bounce_rate", s.AvgBounceRate},
		{"avg_ctr", s.AvgCTR},
	}
	if b := s.BestPerforming; b != nil {
		rows = append(rows,
			[]any{"best_template_id", b.TemplateID},
			[]any{"best_template_name", b.TemplateName},
			[]any{"best_campaign_id", b.CampaignID},
			[]any{"best_open_rate", b.OpenRate},
		)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "B1", style); err != nil {
		return fmt.Errorf("style summary header: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 22)
}

func writeCampaigns(f *excelize.File, metrics []domain.CampaignMetrics, style int) error {
	header := make([]any, len(campaignColumns))
	for i, c := range campaignColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(CampaignsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write campaigns header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(campaignColumns), 1)
	if err := f.SetCellStyle(CampaignsSheet, "A1", last, style); err != nil {
		return fmt.Errorf("style campaigns header: %w", err)
	}

	for i, m := range metrics {
		row := []any{
			m.CampaignID, m.TemplateID, m.TemplateName,
			m.Sent, m.Delivered, m.Opened, m.Clicked, m.Bounced, m.Unsubscribed,
			m.OpenRate, m.ClickRate, m.BounceRate, m.CTR, m.UnsubscribeRate,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(CampaignsSheet, cell, &row); err != nil {
			return fmt.Errorf("write campaign %s: %w", m.CampaignID, err)
		}
	}
	return f.SetPanes(CampaignsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
