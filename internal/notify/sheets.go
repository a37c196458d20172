package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Veraticus/chargeback/internal/model"
	"github.com/samber/lo"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsNotifier publishes the report rows to a Google Spreadsheet, one tab
// per billing period.
type SheetsNotifier struct {
	service *sheets.Service
	logger  *slog.Logger
	config  SheetsConfig
}

// NewSheetsNotifier creates a Google Sheets notifier.
func NewSheetsNotifier(ctx context.Context, config SheetsConfig, logger *slog.Logger) (*SheetsNotifier, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheets config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newSheetsNotifier(service, config, logger), nil
}

func newSheetsNotifier(service *sheets.Service, config SheetsConfig, logger *slog.Logger) *SheetsNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultSheetsConfig().BatchSize
	}
	return &SheetsNotifier{service: service, config: config, logger: logger}
}

// Name implements Notifier.
func (s *SheetsNotifier) Name() string {
	return ChannelSheets
}

// Notify implements Notifier.
func (s *SheetsNotifier) Notify(ctx context.Context, n Notification) error {
	if n.Report == nil {
		return fmt.Errorf("notification has no report")
	}
	tab := n.Report.Period

	spreadsheetID, err := s.getOrCreateSpreadsheet(ctx, tab)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	sheetID, err := s.ensureTab(ctx, spreadsheetID, tab)
	if err != nil {
		return fmt.Errorf("failed to prepare tab %q: %w", tab, err)
	}

	values := prepareRows(n.Report)
	if err := s.writeData(ctx, spreadsheetID, tab, values); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if s.config.EnableFormatting {
		if err := s.applyFormatting(ctx, spreadsheetID, sheetID, len(n.Report.Entries)); err != nil {
			s.logger.Warn("Failed to apply formatting", "error", err)
		}
	}

	s.logger.Info("Report published to Google Sheets",
		"spreadsheet_id", spreadsheetID,
		"tab", tab,
		"rows_written", len(values))
	return nil
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config SheetsConfig) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// getOrCreateSpreadsheet returns the configured spreadsheet, or creates one
// whose first tab is named tab.
func (s *SheetsNotifier) getOrCreateSpreadsheet(ctx context.Context, tab string) (string, error) {
	if s.config.SpreadsheetID != "" {
		return s.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    s.config.SpreadsheetName,
			TimeZone: s.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: tab}},
		},
	}

	created, err := s.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	s.logger.Info("Created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	// Later runs append tabs to this spreadsheet.
	s.config.SpreadsheetID = created.SpreadsheetId
	return created.SpreadsheetId, nil
}

// ensureTab returns the sheet id of tab, adding the tab when it does not
// exist and clearing it when it does.
func (s *SheetsNotifier) ensureTab(ctx context.Context, spreadsheetID, tab string) (int64, error) {
	spreadsheet, err := s.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to access spreadsheet %s: %w", spreadsheetID, err)
	}

	existing, found := lo.Find(spreadsheet.Sheets, func(sh *sheets.Sheet) bool {
		return sh.Properties != nil && sh.Properties.Title == tab
	})
	if found {
		_, err := s.service.Spreadsheets.Values.Clear(spreadsheetID, fmt.Sprintf("'%s'!A:Z", tab), &sheets.ClearValuesRequest{}).
			Context(ctx).
			Do()
		if err != nil {
			return 0, fmt.Errorf("unable to clear tab: %w", err)
		}
		return existing.Properties.SheetId, nil
	}

	resp, err := s.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{
			{AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: tab}}},
		},
	}).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to add tab: %w", err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return 0, fmt.Errorf("add tab returned no sheet properties")
	}
	return resp.Replies[0].AddSheet.Properties.SheetId, nil
}

// prepareRows lays out the header, one row per entry, and a total row.
func prepareRows(report *model.Report) [][]any {
	values := make([][]any, 0, len(report.Entries)+3)

	header := lo.Map(model.ReportColumns, func(col string, _ int) any { return col })
	values = append(values, header)

	for _, row := range report.Rows() {
		values = append(values, lo.Map(row, func(v string, _ int) any { return v }))
	}

	values = append(values,
		[]any{},
		[]any{"Total", "", "", "", model.FormatCurrency(report.Total()), report.Period},
	)
	return values
}

// writeData writes values to tab in batches to stay under API limits.
func (s *SheetsNotifier) writeData(ctx context.Context, spreadsheetID, tab string, values [][]any) error {
	for i := 0; i < len(values); i += s.config.BatchSize {
		end := min(i+s.config.BatchSize, len(values))

		batch := values[i:end]
		valueRange := &sheets.ValueRange{
			Values: batch,
		}

		rangeStr := fmt.Sprintf("'%s'!A%d", tab, i+1)
		_, err := s.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, valueRange).
			ValueInputOption("RAW").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		s.logger.Debug("Wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

// applyFormatting bolds and freezes the header and sizes the columns.
func (s *SheetsNotifier) applyFormatting(ctx context.Context, spreadsheetID string, sheetID int64, entries int) error {
	columns := int64(len(model.ReportColumns))
	requests := []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(entries) + 2,
					EndRowIndex:      int64(entries) + 3,
					StartColumnIndex: 0,
					EndColumnIndex:   columns,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   columns,
				},
			},
		},
		{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId: sheetID,
					GridProperties: &sheets.GridProperties{
						FrozenRowCount: 1,
					},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	}

	_, err := s.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}
