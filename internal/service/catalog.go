package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"property_portal/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

var (
	ErrInvalidWorkbook = errors.New("invalid Excel file")
	ErrEmptyWorkbook   = errors.New("workbook has no rows to import")
)

// ImportResult summarises a bulk import
type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  []RowError       `json:"skipped"`
	Created  []model.Property `json:"-"`
}

// RowError explains why a spreadsheet row was not imported. Row is 1-based
// as shown in the spreadsheet, the header being row 1.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// rowValidator applies the same binding rules gin uses at the HTTP boundary.
var rowValidator = newRowValidator()

func newRowValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var csvHeader = []string{"ID", "Title", "Location", "Price", "Type", "Beds", "Baths", "Area", "Image", "Status", "City", "CreatedAt", "UpdatedAt"}

func (s *propertyService) ExportCSV(ctx context.Context) (*bytes.Buffer, error) {
	properties, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get properties for CSV export: %w", err)
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	if err := writer.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range properties {
		var city string
		if p.City != nil {
			city = *p.City
		}
		row := []string{
			strconv.Itoa(p.ID),
			p.Title,
			p.Location,
			p.Price,
			p.Type,
			strconv.Itoa(p.Beds),
			strconv.Itoa(p.Baths),
			p.Area,
			p.Image,
			p.Status,
			city,
			p.CreatedAt.Format(time.RFC3339),
			p.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("error flushing CSV writer: %w", err)
	}

	return buffer, nil
}

// ImportXLSX reads the first sheet of a workbook and creates one property
// per data row. The first row is a header; columns are matched by name
// (title, location, price, type, beds, baths, area, image, status, city) in
// any order. Invalid rows are reported and skipped.
func (s *propertyService) ImportXLSX(ctx context.Context, r io.Reader) (*ImportResult, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer xlsx.Close()

	sheets := xlsx.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := xlsx.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyWorkbook
	}

	columns := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	result := &ImportResult{Skipped: []RowError{}, Created: []model.Property{}}
	for i, row := range rows[1:] {
		rowNum := i + 2
		if isBlankRow(row) {
			continue
		}

		input, err := rowToInput(columns, row)
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Error: err.Error()})
			continue
		}

		property, err := s.CreateProperty(ctx, input, nil)
		if err != nil {
			return result, fmt.Errorf("failed to import row %d: %w", rowNum, err)
		}
		result.Created = append(result.Created, *property)
		result.Imported++
	}
	return result, nil
}

func rowToInput(columns map[string]int, row []string) (model.PropertyInput, error) {
	cell := func(names ...string) string {
		for _, name := range names {
			if idx, ok := columns[name]; ok && idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
		}
		return ""
	}

	input := model.PropertyInput{
		Title:    cell("title"),
		Location: cell("location"),
		Price:    cell("price"),
		Type:     cell("type"),
		Area:     cell("area"),
		Status:   cell("status"),
		City:     cell("city"),
		ImageURL: cell("image", "imageurl"),
	}

	var err error
	if input.Beds, err = parseCount(cell("beds")); err != nil {
		return input, fmt.Errorf("beds: %w", err)
	}
	if input.Baths, err = parseCount(cell("baths")); err != nil {
		return input, fmt.Errorf("baths: %w", err)
	}

	if err := rowValidator.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return input, fmt.Errorf("%s: failed on '%s'", verrs[0].Field(), verrs[0].Tag())
		}
		return input, err
	}
	return input, nil
}

func parseCount(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("not a whole number: %q", v)
	}
	return n, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
