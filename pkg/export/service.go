package export

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"

	"github.com/cartbridge/partnerhub/pkg/domain"
)

// Service builds XLSX exports of the deal book and commission ledger for
// the admin back office.
type Service struct {
	db      *gorm.DB
	printer *message.Printer
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db: db,
		// Amounts are written with digit grouping so the sheets match the
		// finance team's own spreadsheets.
		printer: message.NewPrinter(language.English),
	}
}

// Deals writes every deal, with its owning partner, to a spreadsheet
func (s *Service) Deals(ctx context.Context) ([]byte, string, error) {
	var deals []domain.Deal
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&deals).Error
	if err != nil {
		return nil, "", fmt.Errorf("failed loading deals for export: %w", err)
	}

	partnerEmails, err := s.partnerEmails(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Deals"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Partner", "Brand", "Monthly GMV", "Product", "Vertical", "Stage", "Stage Since", "Commission Earned", "Commission Pending", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, d := range deals {
		values := []interface{}{
			d.ID,
			partnerEmails[d.PartnerID],
			d.BrandName,
			s.amount(d.MonthlyGMV.InexactFloat64()),
			string(d.Product),
			string(d.Vertical),
			string(d.Stage),
			d.StageUpdatedAt.Format("2006-01-02"),
			s.amount(d.CommissionEarned.InexactFloat64()),
			s.amount(d.CommissionPending.InexactFloat64()),
			d.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed writing spreadsheet: %w", err)
	}

	filename := fmt.Sprintf("deals_%s.xlsx", time.Now().UTC().Format("20060102"))
	return buf.Bytes(), filename, nil
}

// Commissions writes the commission ledger to a spreadsheet
func (s *Service) Commissions(ctx context.Context) ([]byte, string, error) {
	var records []domain.CommissionRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&records).Error
	if err != nil {
		return nil, "", fmt.Errorf("failed loading commissions for export: %w", err)
	}

	partnerEmails, err := s.partnerEmails(ctx)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Commissions"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"ID", "Partner", "Deal ID", "Amount", "Status", "Formula", "Paid At", "Created"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, r := range records {
		paidAt := ""
		if r.PaidAt != nil {
			paidAt = r.PaidAt.Format("2006-01-02")
		}
		values := []interface{}{
			r.ID,
			partnerEmails[r.PartnerID],
			r.DealID,
			s.amount(r.Amount.InexactFloat64()),
			r.Status,
			r.Formula,
			paidAt,
			r.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed writing spreadsheet: %w", err)
	}

	filename := fmt.Sprintf("commissions_%s.xlsx", time.Now().UTC().Format("20060102"))
	return buf.Bytes(), filename, nil
}

func (s *Service) amount(v float64) string {
	return s.printer.Sprintf("%.2f", v)
}

func (s *Service) partnerEmails(ctx context.Context) (map[uint]string, error) {
	var partners []domain.Partner
	if err := s.db.WithContext(ctx).Find(&partners).Error; err != nil {
		return nil, fmt.Errorf("failed loading partners for export: %w", err)
	}
	emails := make(map[uint]string, len(partners))
	for _, p := range partners {
		emails[p.ID] = p.Email
	}
	return emails, nil
}
