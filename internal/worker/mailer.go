package worker

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/cargodesk/cargodesk/internal/config"
	"github.com/cargodesk/cargodesk/internal/costing/calc"
	"github.com/cargodesk/cargodesk/internal/costing/model"
)

// Mailer delivers cost estimate summaries over SMTP.
type Mailer struct {
	cfg config.SMTPConfig
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendEstimate renders and sends the plain-text estimate summary.
func (m *Mailer) SendEstimate(recipient string, estimate *model.CostEstimate, totals calc.EstimateTotals) error {
	subject := fmt.Sprintf("Cost estimate %s", estimate.ReferenceNumber)
	body := renderEstimateBody(estimate, totals)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send estimate mail: %w", err)
	}
	return nil
}

func renderEstimateBody(estimate *model.CostEstimate, totals calc.EstimateTotals) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FCL import cost estimate %s\n", estimate.ReferenceNumber)
	if estimate.Supplier != "" {
		fmt.Fprintf(&b, "Supplier: %s\n", estimate.Supplier)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Origin charges:        R %.2f\n", totals.OriginChargesZAR)
	fmt.Fprintf(&b, "Ocean freight:         R %.2f\n", totals.OceanFreightChargesZAR)
	fmt.Fprintf(&b, "Local charges:         R %.2f\n", totals.LocalChargesZAR)
	fmt.Fprintf(&b, "Destination charges:   R %.2f\n", totals.DestinationChargesZAR)
	fmt.Fprintf(&b, "Agency fee:            R %.2f\n", totals.AgencyFee)
	fmt.Fprintf(&b, "Total shipping:        R %.2f\n", totals.TotalShippingZAR)
	b.WriteString("\n")

	for _, p := range totals.Products {
		fmt.Fprintf(&b, "%s\n", p.Name)
		fmt.Fprintf(&b, "  Weight:            %.2f kg\n", p.WeightKg)
		fmt.Fprintf(&b, "  Invoice value:     %.2f\n", p.InvoiceValue)
		fmt.Fprintf(&b, "  Customs value:     R %.2f\n", p.Customs.CustomsValue)
		fmt.Fprintf(&b, "  Duties:            R %.2f\n", p.Customs.Duty+p.Customs.Schedule1Duty)
		fmt.Fprintf(&b, "  Allocated shipping R %.2f\n", p.AllocatedShipping)
		fmt.Fprintf(&b, "  Landed cost:       R %.2f (R %.2f/kg)\n", p.LandedCost, p.CostPerKg)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Total duties:          R %.2f\n", totals.TotalDuties)
	fmt.Fprintf(&b, "Total landed cost:     R %.2f\n", totals.TotalLandedCost)
	fmt.Fprintf(&b, "Import VAT (excluded): R %.2f\n", totals.TotalImportVAT)

	if estimate.Notes != "" {
		fmt.Fprintf(&b, "\nNotes:\n%s\n", estimate.Notes)
	}
	return b.String()
}
