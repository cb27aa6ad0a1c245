package tickets

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/joshua-takyi/gatepass/internal/models"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

var bookingDateZone = time.FixedZone("IST", 5*3600+1800)

// Generator renders booking PDFs. Output depends only on the booking, so a
// ticket can be regenerated on demand instead of being stored.
type Generator struct {
	EventName string
	compress  bool
}

func NewGenerator(eventName string) *Generator {
	return &Generator{EventName: eventName, compress: true}
}

func (g *Generator) Render(b *models.Booking) ([]byte, error) {
	payload, err := EncodePayload(PayloadFor(b))
	if err != nil {
		return nil, err
	}
	qr, err := qrcode.Encode(payload, qrcode.High, qrSize)
	if err != nil {
		return nil, fmt.Errorf("error encoding qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(b.Timestamp)
	pdf.SetModificationDate(b.Timestamp)
	pdf.SetTitle(fmt.Sprintf("%s ticket %s", g.EventName, b.SerialNumber), true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// core fonts are cp1252; runes outside it print as '.'
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// header
	pdf.SetFont("Helvetica", "B", 26)
	pdf.CellFormat(0, 14, tr(strings.ToUpper(g.EventName)), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 15)
	pdf.CellFormat(0, 9, "OFFICIAL TICKET", "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(6)

	drawSection(pdf, tr, "TICKET INFORMATION", []string{
		"Serial Number: " + b.SerialNumber,
		"Ticket Type: " + b.TicketType,
		fmt.Sprintf("Quantity: %d", b.Quantity),
		fmt.Sprintf("Total Amount: INR %.2f", b.TotalAmount),
	})
	drawSection(pdf, tr, "CUSTOMER INFORMATION", []string{
		"Name: " + b.FullName,
		"Email: " + b.Email,
		"Phone: " + b.Phone,
	})
	drawSection(pdf, tr, "PAYMENT INFORMATION", []string{
		"Payment ID: " + b.PaymentID,
		"Booking Date: " + b.Timestamp.In(bookingDateZone).Format("02/01/2006, 3:04:05 pm"),
	})

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "VERIFICATION QR CODE", "", 1, "C", false, 0, "")
	y := pdf.GetY() + 2
	opts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 80, y, 50, 50, false, opts, 0, "")

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(15, 270, 195, 270)
	pdf.SetY(273)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 5, "Please present this ticket at the venue for entry.", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, "Keep this ticket safe and do not share it with others.", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("(c) %d %s. All rights reserved.", b.Timestamp.Year(), g.EventName)), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error rendering ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSection(pdf *gofpdf.Fpdf, tr func(string) string, title string, lines []string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range lines {
		pdf.SetX(20)
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

// FileName is the attachment name used for downloads and e-mail.
func FileName(serial string) string {
	return "Ticket_" + serial + ".pdf"
}
