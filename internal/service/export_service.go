package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/kohei-dev/student-management-api/internal/dto"
	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
	"github.com/kohei-dev/student-management-api/pkg/export"
)

// Export formats supported by the roster export.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

var rosterColumns = []string{"studentId", "fullname", "kanaName", "email", "age", "sex", "courses"}

type rosterLister interface {
	List(ctx context.Context) ([]dto.StudentDetailResponse, error)
}

// ExportService renders the active roster into downloadable documents.
type ExportService struct {
	students rosterLister
}

// NewExportService constructs the export service.
func NewExportService(students rosterLister) *ExportService {
	return &ExportService{students: students}
}

// Roster renders the active student roster in the requested format,
// returning the document bytes and their content type.
func (s *ExportService) Roster(ctx context.Context, format string) ([]byte, string, error) {
	details, err := s.students.List(ctx)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{Columns: rosterColumns, Rows: make([][]string, 0, len(details))}
	for _, detail := range details {
		names := make([]string, 0, len(detail.StudentCourseList))
		for _, course := range detail.StudentCourseList {
			names = append(names, course.CourseName)
		}
		table.Rows = append(table.Rows, []string{
			strconv.FormatInt(detail.Student.StudentID, 10),
			detail.Student.Fullname,
			detail.Student.KanaName,
			detail.Student.Email,
			strconv.Itoa(detail.Student.Age),
			detail.Student.Sex,
			strings.Join(names, ";"),
		})
	}

	switch format {
	case ExportFormatCSV, "":
		payload, err := export.CSV(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case ExportFormatPDF:
		payload, err := export.PDF(table, "Student Roster")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrInvalidArgument, "unsupported export format: "+format)
	}
}
