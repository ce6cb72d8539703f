package repository

import (
	"context"
	"fmt"
	"time"

	"signal-desk/config"
	"signal-desk/internal/dto"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type sheetsTradeJournal struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
	timeout       time.Duration
}

// NewSheetsTradeJournal appends trade rows to a Google Sheet. Extra client
// options are appended after the credentials file option.
func NewSheetsTradeJournal(ctx context.Context, cfg config.SheetConfig, opts ...option.ClientOption) (TradeJournalRepository, error) {
	clientOpts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return &sheetsTradeJournal{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		writeRange:    cfg.Range,
		timeout:       cfg.Timeout,
	}, nil
}

func (r *sheetsTradeJournal) Append(ctx context.Context, entry dto.TradeEntry) error {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	row := &sheets.ValueRange{
		Values: [][]interface{}{{
			entry.Timestamp.Format(time.RFC3339),
			entry.Ticker,
			entry.Side,
			entry.Quantity,
			entry.ID,
		}},
	}

	_, err := r.service.Spreadsheets.Values.
		Append(r.spreadsheetID, r.writeRange, row).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append trade row: %w", err)
	}
	return nil
}
