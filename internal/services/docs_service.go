package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"transporte/internal/domain/models"
	"transporte/internal/metrics"
	"transporte/internal/utils"
)

// DocsService renders printable documents.
type DocsService struct {
	Metrics *metrics.Metrics
	Clock   utils.Clock
}

// RenderManifestPDF lays the manifest out on A4 and returns the bytes and a
// download filename.
func (s DocsService) RenderManifestPDF(doc models.ManifestDocument) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Manifiesto de pasajeros", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "MANIFIESTO DE PASAJEROS")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	header := []string{
		fmt.Sprintf("Salida        : #%d (%s)", doc.Trip.DepartureID, doc.Trip.Status),
		fmt.Sprintf("Ruta          : %s", safe(doc.Trip.Route, "-")),
		fmt.Sprintf("Fecha/Hora    : %s", utils.FormatDateTime(doc.Trip.ScheduledAt)),
		fmt.Sprintf("Vehiculo      : %s", safe(doc.Trip.Vehicle, "-")),
		fmt.Sprintf("Conductor     : %s", safe(doc.Trip.Driver, "-")),
		fmt.Sprintf("Capacidad     : %d asientos", doc.Trip.Capacity),
	}
	for _, line := range header {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	widths := []float64{14, 70, 28, 26, 26, 26}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Asiento", "Pasajero", "DNI", "Tipo", "Estado", "Precio"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range doc.Roster {
		cells := []string{
			fmt.Sprint(r.SeatNumber),
			tr(truncate(r.Passenger.Name, 38)),
			r.Passenger.NationalID,
			kindLabel(r.Kind),
			statusLabel(r.Status),
			r.Price.String(),
		}
		for i, c := range cells {
			align := "L"
			if i == 0 || i == 5 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(doc.Roster) == 0 {
		pdf.CellFormat(190, 6, "Sin pasajeros registrados", "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	st := doc.Stats
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 6, "Resumen")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	summary := []string{
		fmt.Sprintf("Pasajeros: %d (vendidos %d, reservas del conductor %d)", st.Passengers, st.Sold, st.DriverHolds),
		fmt.Sprintf("Abordaron: %d   No se presentaron: %d", st.Boarded, st.NoShows),
		fmt.Sprintf("Ocupacion: %s%%   Asientos libres: %d", utils.FormatMoney(st.Occupancy), st.CapacityRemaining),
		fmt.Sprintf("Recaudacion pasajes: S/ %s", st.Revenue),
		fmt.Sprintf("Encomiendas: %d (%s kg, S/ %s)", st.Parcels, utils.FormatMoney(st.ParcelWeightKg), st.ParcelRevenue),
	}
	for _, line := range summary {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	if st.Inconsistent {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, fmt.Sprintf("Atencion: asientos fuera de la capacidad actual del vehiculo: %s",
			joinInts(st.OverCapacitySeats)), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	s.Metrics.ManifestRendered()

	at := doc.GeneratedAt
	if at.IsZero() {
		at = s.Clock.Now()
	}
	filename := fmt.Sprintf("MANIFIESTO_%d_%s.pdf", doc.Trip.DepartureID, utils.FormatStamp(at))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func kindLabel(k models.SeatKind) string {
	if k == models.SeatDriverHold {
		return "Conductor"
	}
	return "Venta"
}

func statusLabel(s models.SeatStatus) string {
	switch s {
	case models.SeatBoarded:
		return "Abordo"
	case models.SeatNoShow:
		return "No vino"
	case models.SeatPaid:
		return "Pagado"
	}
	return "Reservado"
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
