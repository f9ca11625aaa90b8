// Package pdf renders the workflow documents: the Good Issue Note produced
// when a transfer is approved and the Asset Holder Form listing a custodian's
// assets.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// AssetLine is one asset row on a document.
type AssetLine struct {
	SCOMAssetID string
	AssetName   string
	TagNumber   string
	Status      string
}

// GoodIssueNoteData carries everything printed on a Good Issue Note.
type GoodIssueNoteData struct {
	TransferID   string
	ApprovedBy   string
	ApprovedAt   time.Time
	FromHolder   string
	ToHolder     string
	FromLocation string
	ToLocation   string
	Assets       []AssetLine
}

// AssetHolderFormData carries everything printed on an Asset Holder Form.
type AssetHolderFormData struct {
	CustodianName string
	GeneratedAt   time.Time
	Assets        []AssetLine
}

// Renderer produces the documents as PDF bytes.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

const dateLayout = "2006-01-02"

// GoodIssueNote renders the transfer handover document.
func (r *Renderer) GoodIssueNote(data GoodIssueNoteData) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Good Issue Note")
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	writeField(doc, "Transfer ID", data.TransferID)
	writeField(doc, "Approved by", data.ApprovedBy)
	writeField(doc, "Approval date", data.ApprovedAt.Format(dateLayout))
	if data.FromHolder != "" || data.ToHolder != "" {
		writeField(doc, "From holder", orDash(data.FromHolder))
		writeField(doc, "To holder", orDash(data.ToHolder))
	}
	if data.FromLocation != "" || data.ToLocation != "" {
		writeField(doc, "From location", orDash(data.FromLocation))
		writeField(doc, "To location", orDash(data.ToLocation))
	}
	doc.Ln(4)

	writeAssetTable(doc, data.Assets)

	doc.Ln(16)
	doc.SetFont("Helvetica", "", 10)
	doc.Cell(90, 8, "Issued by (signature): ______________________")
	doc.Cell(90, 8, "Received by (signature): ______________________")

	return output(doc)
}

// AssetHolderForm renders the custodian acknowledgement document.
func (r *Renderer) AssetHolderForm(data AssetHolderFormData) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Cell(0, 10, "Asset Holder Form")
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 10)
	writeField(doc, "Custodian", data.CustodianName)
	writeField(doc, "Generated", data.GeneratedAt.Format(dateLayout))
	writeField(doc, "Assets held", fmt.Sprintf("%d", len(data.Assets)))
	doc.Ln(4)

	writeAssetTable(doc, data.Assets)

	doc.Ln(16)
	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 8, "I confirm the assets listed above are in my custody.")
	doc.Ln(10)
	doc.Cell(90, 8, "Custodian (signature): ______________________")
	doc.Cell(90, 8, "Date: ______________")

	return output(doc)
}

func writeField(doc *fpdf.Fpdf, label, value string) {
	doc.SetFont("Helvetica", "B", 10)
	doc.Cell(40, 6, label+":")
	doc.SetFont("Helvetica", "", 10)
	doc.Cell(0, 6, value)
	doc.Ln(6)
}

func writeAssetTable(doc *fpdf.Fpdf, assets []AssetLine) {
	doc.SetFont("Helvetica", "B", 9)
	doc.SetFillColor(230, 230, 230)
	doc.CellFormat(60, 7, "SCOM Asset ID", "1", 0, "L", true, 0, "")
	doc.CellFormat(70, 7, "Asset Name", "1", 0, "L", true, 0, "")
	doc.CellFormat(35, 7, "Tag Number", "1", 0, "L", true, 0, "")
	doc.CellFormat(25, 7, "Status", "1", 1, "L", true, 0, "")

	doc.SetFont("Helvetica", "", 9)
	for _, a := range assets {
		doc.CellFormat(60, 7, a.SCOMAssetID, "1", 0, "L", false, 0, "")
		doc.CellFormat(70, 7, a.AssetName, "1", 0, "L", false, 0, "")
		doc.CellFormat(35, 7, a.TagNumber, "1", 0, "L", false, 0, "")
		doc.CellFormat(25, 7, a.Status, "1", 1, "L", false, 0, "")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func output(doc *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
