package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"shiftcare/backend/internal/dto"
	"shiftcare/backend/internal/model"
	"shiftcare/backend/internal/repository"
	"shiftcare/backend/internal/swap"
)

// ── Export errors ──

var ErrExportGenerateFail = errors.New("failed to generate the Excel file")

const (
	defaultExportWindowDays = 30
	maxExportWindowDays     = 366
	exportSheetName         = "Swap requests"
)

var exportHeaders = []string{
	"Request ID", "Created", "Requester", "Target staff", "Original shift start",
	"Original shift sector", "Target shift start", "Status", "Admin status",
	"Responded", "Resolved", "Requester notes", "Admin notes",
}

// ExportService 换班记录导出
//
// 以 buffer 返回工作簿，由 handler 设置下载头并写出。
type ExportService interface {
	ExportSwaps(ctx context.Context, actor swap.Actor, req *dto.ExportSwapsRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportSwaps: swap history as Excel
// ═══════════════════════════════════════════════════════════
//
// One sheet, one row per request ordered by creation time. Times are UTC.

func (s *exportService) ExportSwaps(ctx context.Context, actor swap.Actor, req *dto.ExportSwapsRequest) (*bytes.Buffer, string, error) {
	member, err := s.repo.Member.GetActive(ctx, actor.OrganizationID, actor.StaffID)
	if err != nil || !member.Role.CanResolve() {
		return nil, "", swap.ErrNotAuthorized
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	from, to, err := parseWindow(req.From, req.To, today.AddDate(0, 0, -defaultExportWindowDays+1), defaultExportWindowDays, maxExportWindowDays)
	if err != nil {
		return nil, "", err
	}

	records, err := s.repo.SwapRequest.ListForExport(ctx, actor.OrganizationID, from, to)
	if err != nil {
		s.logger.Error("load swap history failed", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrExportGenerateFail, err)
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})

	for col, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(exportSheetName, cell, h)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	_ = f.SetCellStyle(exportSheetName, "A1", lastHeader, headerStyle)

	for i := range records {
		row := exportRow(&records[i])
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			_ = f.SetCellValue(exportSheetName, cell, v)
		}
	}
	_ = f.SetColWidth(exportSheetName, "A", "A", 38)
	_ = f.SetColWidth(exportSheetName, "B", "K", 22)
	_ = f.SetColWidth(exportSheetName, "L", "M", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("write Excel failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("swap_requests_%s_%s.xlsx", from.Format(dateLayout), to.AddDate(0, 0, -1).Format(dateLayout))
	s.logger.Info("swap history exported",
		zap.String("organization_id", actor.OrganizationID),
		zap.Int("rows", len(records)),
	)
	return buf, filename, nil
}

func exportRow(r *model.ShiftSwapRequest) []interface{} {
	str := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	staffName := func(st *model.Staff, id *string) string {
		if st != nil {
			return st.Name
		}
		if id == nil {
			return "(open offer)"
		}
		return *id
	}
	shiftStart := func(sh *model.Shift) string {
		if sh == nil {
			return ""
		}
		return formatTime(sh.StartsAt)
	}

	sector := ""
	if r.OriginalShift != nil && r.OriginalShift.Sector != nil {
		sector = r.OriginalShift.Sector.Name
	}
	requester := r.RequesterID
	if r.Requester != nil {
		requester = r.Requester.Name
	}

	return []interface{}{
		r.ID,
		formatTime(r.CreatedAt),
		requester,
		staffName(r.TargetStaff, r.TargetStaffID),
		shiftStart(r.OriginalShift),
		sector,
		shiftStart(r.TargetShift),
		string(r.Status),
		string(r.AdminStatus),
		str(formatTimePtr(r.RespondedAt)),
		str(formatTimePtr(r.ResolvedAt)),
		str(r.RequesterNotes),
		str(r.AdminNotes),
	}
}
