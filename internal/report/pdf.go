// Package report renders a station result set as a paginated PDF
// document: title section, summary table, then one detail section per
// station with connection and contact sub-tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/chargespot/chargespot/internal/station"
)

const (
	placeholder = "N/A"

	summaryNameWidth     = 30
	summaryOperatorWidth = 20
)

// Renderer produces PDF reports for station result sets.
type Renderer struct {
	// Title overrides the default document title when non-empty.
	Title string

	// now is overridable for tests.
	now func() time.Time
}

// NewRenderer creates a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render writes a complete PDF for the given stations. Absent optional
// fields render placeholders; only write failures produce an error.
func (r *Renderer) Render(w io.Writer, stations []*station.Station) error {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetAutoPageBreak(true, 15)

	r.writeTitlePage(doc, len(stations))
	if len(stations) > 0 {
		r.writeSummaryTable(doc, stations)
	}
	for i, s := range stations {
		doc.AddPage()
		r.writeStationDetail(doc, s, i+1)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("writing station report: %w", err)
	}
	return nil
}

func (r *Renderer) writeTitlePage(doc *fpdf.Fpdf, count int) {
	doc.AddPage()

	title := r.Title
	if title == "" {
		title = "Electric Vehicle Charging Stations Report"
	}

	doc.SetFont("Helvetica", "B", 22)
	doc.SetTextColor(0, 0, 128)
	doc.MultiCell(0, 12, title, "", "C", false)
	doc.Ln(10)

	now := time.Now()
	if r.now != nil {
		now = r.now()
	}

	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(0, 0, 0)
	for _, line := range []string{
		"Generated on: " + now.Format("January 2, 2006 at 3:04 PM"),
		"Total Stations: " + strconv.Itoa(count),
		"Data source: OpenChargeMap.org",
	} {
		doc.CellFormat(0, 8, line, "", 1, "L", false, 0, "")
	}

	doc.Ln(15)
	doc.MultiCell(0, 6,
		"This report contains detailed information about electric vehicle charging "+
			"stations found in the selected area. Each station entry includes location "+
			"details, operator information, connection types, and availability status.",
		"", "L", false)
}

func (r *Renderer) writeSummaryTable(doc *fpdf.Fpdf, stations []*station.Station) {
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 14)
	doc.SetTextColor(0, 0, 128)
	doc.CellFormat(0, 10, "Summary of Charging Stations", "", 1, "L", false, 0, "")
	doc.Ln(2)

	headers := []string{"#", "Station Name", "Distance (km)", "Operator", "Status", "Points"}
	widths := []float64{10, 62, 26, 44, 30, 18}

	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(0, 0, 128)
	doc.SetTextColor(255, 255, 255)
	for i, h := range headers {
		doc.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(0, 0, 0)
	fill := false
	for i, s := range stations {
		doc.SetFillColor(235, 235, 235)
		row := []string{
			strconv.Itoa(i + 1),
			truncate(s.Name, summaryNameWidth),
			formatDistance(s.Distance),
			truncate(s.Operator, summaryOperatorWidth),
			s.Status,
			strconv.Itoa(s.NumPoints),
		}
		for j, cell := range row {
			doc.CellFormat(widths[j], 7, cell, "1", 0, "C", fill, 0, "")
		}
		doc.Ln(-1)
		fill = !fill
	}
}

func (r *Renderer) writeStationDetail(doc *fpdf.Fpdf, s *station.Station, num int) {
	doc.SetFont("Helvetica", "B", 12)
	doc.SetTextColor(0, 100, 0)
	doc.MultiCell(0, 8, fmt.Sprintf("Station %d: %s", num, s.Name), "", "L", false)
	doc.Ln(2)

	r.writeKeyValueTable(doc, [][2]string{
		{"Location", s.Address},
		{"Coordinates", fmt.Sprintf("%.6f, %.6f", s.Latitude, s.Longitude)},
		{"Distance", formatDistance(s.Distance) + " km"},
		{"Operator", s.Operator},
		{"Status", s.Status},
		{"Access Type", s.AccessType},
		{"Charging Points", strconv.Itoa(s.NumPoints)},
		{"Verification", s.VerificationStatus},
	})
	doc.Ln(6)

	if len(s.Connections) > 0 {
		r.writeSectionHeader(doc, "Connection Details")
		r.writeConnectionTable(doc, s.Connections)
		doc.Ln(6)
	}

	contact := [][2]string{}
	if s.Phone != "" {
		contact = append(contact, [2]string{"Phone", s.Phone})
	}
	if s.Email != "" {
		contact = append(contact, [2]string{"Email", s.Email})
	}
	if s.URL != "" {
		contact = append(contact, [2]string{"Website", s.URL})
	}
	if len(contact) > 0 {
		r.writeSectionHeader(doc, "Contact Information")
		r.writeKeyValueTable(doc, contact)
		doc.Ln(6)
	}

	extra := [][2]string{}
	if s.Cost != "" && s.Cost != station.Unknown {
		extra = append(extra, [2]string{"Cost", s.Cost})
	}
	if s.Comments != "" {
		extra = append(extra, [2]string{"Comments", s.Comments})
	}
	if s.DateCreated != "" {
		extra = append(extra, [2]string{"Date Created", s.DateCreated})
	}
	if s.DateLastVerified != "" {
		extra = append(extra, [2]string{"Last Verified", s.DateLastVerified})
	}
	if len(extra) > 0 {
		r.writeSectionHeader(doc, "Additional Information")
		r.writeKeyValueTable(doc, extra)
	}
}

func (r *Renderer) writeSectionHeader(doc *fpdf.Fpdf, text string) {
	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(0, 0, 128)
	doc.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)
}

func (r *Renderer) writeKeyValueTable(doc *fpdf.Fpdf, rows [][2]string) {
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = placeholder
		}
		doc.SetFont("Helvetica", "B", 9)
		doc.SetFillColor(235, 235, 235)
		doc.SetTextColor(0, 0, 0)
		doc.CellFormat(45, 7, row[0]+":", "1", 0, "R", true, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.CellFormat(0, 7, value, "1", 1, "L", false, 0, "")
	}
}

func (r *Renderer) writeConnectionTable(doc *fpdf.Fpdf, conns []station.Connection) {
	headers := []string{"Type", "Level", "Power (kW)", "Current", "Qty", "Status"}
	widths := []float64{42, 30, 24, 30, 14, 30}

	doc.SetFont("Helvetica", "B", 8)
	doc.SetFillColor(0, 100, 0)
	doc.SetTextColor(255, 255, 255)
	for i, h := range headers {
		doc.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont("Helvetica", "", 8)
	doc.SetTextColor(0, 0, 0)
	for _, c := range conns {
		power := placeholder
		if c.PowerKW != nil {
			power = strconv.FormatFloat(*c.PowerKW, 'f', -1, 64)
		}
		row := []string{c.Type, c.Level, power, c.CurrentType, strconv.Itoa(c.Quantity), c.Status}
		for j, cell := range row {
			doc.CellFormat(widths[j], 7, cell, "1", 0, "C", false, 0, "")
		}
		doc.Ln(-1)
	}
}

func formatDistance(d *float64) string {
	if d == nil {
		return placeholder
	}
	return fmt.Sprintf("%.2f", *d)
}

// truncate shortens s to max characters, never splitting a rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
