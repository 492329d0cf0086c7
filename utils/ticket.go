package utils

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/btnpop/btnpop-api/models"
)

// RenderTicket writes a registration-confirmation PDF for the
// participant to the given path. The caller owns the file and is
// responsible for removing it after streaming.
func RenderTicket(participant *models.Participant, event *models.Event, path string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Event Registration Confirmation", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	labelValue(pdf, "Registration ID:", participant.JoinID)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Event Details", "", 1, "L", false, 0, "")
	labelValue(pdf, "Event:", event.Title)
	labelValue(pdf, "Date:", event.EventDate.Format("Monday, January 2, 2006"))
	if event.EventTime != "" {
		labelValue(pdf, "Time:", event.EventTime)
	}
	labelValue(pdf, "Location:", event.Location)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Participant Information", "", 1, "L", false, 0, "")
	labelValue(pdf, "Name:", participant.Name)
	labelValue(pdf, "Email:", participant.Email)
	if participant.Phone != "" {
		labelValue(pdf, "Phone:", participant.Phone)
	}
	pdf.Ln(6)

	// QR carrying the joinId so staff can verify the registration
	// without typing it.
	if png, err := qrcode.Encode(participant.JoinID, qrcode.Medium, 256); err == nil {
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("joinid-qr", opts, bytes.NewReader(png))
		x := (210 - 40) / 2.0
		pdf.ImageOptions("joinid-qr", x, pdf.GetY(), 40, 40, false, opts, 0, "")
		pdf.SetY(pdf.GetY() + 44)
	}

	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, "Please bring this ticket and a photo ID to the event.", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on "+time.Now().Format("Jan 2, 2006 15:04"), "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write ticket pdf: %w", err)
	}
	return nil
}

func labelValue(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(pdf.GetStringWidth(label)+2, 7, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, " "+value, "", 1, "L", false, 0, "")
}
