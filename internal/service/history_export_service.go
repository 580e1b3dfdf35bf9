package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/tutorhive/booking-api/internal/models"
	"github.com/tutorhive/booking-api/pkg/clock"
	appErrors "github.com/tutorhive/booking-api/pkg/errors"
	"github.com/tutorhive/booking-api/pkg/export"
)

// Export formats.
const (
	ExportCSV = "csv"
	ExportPDF = "pdf"
)

type historySource interface {
	List(ctx context.Context, actor models.Actor, filter models.BookingHistoryFilter) ([]models.Booking, error)
}

// HistoryExportService renders an actor's booking history as CSV or PDF.
type HistoryExportService struct {
	history historySource
	catalog teacherCatalog
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	clock   clock.Clock
	logger  *zap.Logger
}

// NewHistoryExportService constructs a HistoryExportService.
func NewHistoryExportService(history historySource, catalog teacherCatalog, clk clock.Clock, logger *zap.Logger) *HistoryExportService {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryExportService{
		history: history,
		catalog: catalog,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		clock:   clk,
		logger:  logger,
	}
}

// ExportResult is a rendered document ready for download.
type ExportResult struct {
	ContentType string
	Filename    string
	Bytes       []byte
}

// Export renders the filtered history in the requested format.
func (s *HistoryExportService) Export(ctx context.Context, actor models.Actor, filter models.BookingHistoryFilter, format string) (*ExportResult, error) {
	if format != ExportCSV && format != ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	bookings, err := s.history.List(ctx, actor, filter)
	if err != nil {
		return nil, err
	}

	dataset := s.dataset(ctx, actor, bookings)

	switch format {
	case ExportCSV:
		raw, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{ContentType: "text/csv", Filename: s.exportFilename("csv"), Bytes: raw}, nil
	default:
		raw, err := s.pdf.Render(dataset, "Booking History")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{ContentType: "application/pdf", Filename: s.exportFilename("pdf"), Bytes: raw}, nil
	}
}

func (s *HistoryExportService) dataset(ctx context.Context, actor models.Actor, bookings []models.Booking) export.Dataset {
	headers := []string{"Booking", "Teacher", "Type", "First Session", "Sessions", "Status", "Total", "Refund"}
	// Parents and admins export on behalf of others, so the student shows up
	// as its own column.
	withStudent := actor.Role == models.RoleParent || actor.Role == models.RoleAdmin
	if withStudent {
		headers = append([]string{"Booking", "Student"}, headers[1:]...)
	}
	rows := make([]map[string]string, 0, len(bookings))
	for _, b := range bookings {
		teacherName := b.TeacherID
		if teacher, err := s.catalog.GetTeacher(ctx, b.TeacherID); err == nil {
			teacherName = teacher.Name
		}

		refund := ""
		if b.RefundStatus != nil {
			refund = *b.RefundStatus
		}

		first := ""
		if start := b.FirstSessionStart(); !start.IsZero() {
			first = start.Format("2006-01-02 15:04")
		}

		row := map[string]string{
			"Booking":       b.ID,
			"Teacher":       teacherName,
			"Type":          string(b.SessionType),
			"First Session": first,
			"Sessions":      strconv.Itoa(len(b.Sessions)),
			"Status":        string(b.Status),
			"Total":         b.Quote.Total.StringFixed(2),
			"Refund":        refund,
		}
		if withStudent {
			row["Student"] = b.StudentID
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func (s *HistoryExportService) exportFilename(ext string) string {
	return fmt.Sprintf("booking-history-%s.%s", s.clock.Now().UTC().Format("20060102"), ext)
}
