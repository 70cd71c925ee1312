// Package pdf renders a quote into its printable invoice using maroto/v2.
// Rendering is a pure function of the quote: no file system, no remote
// calls, and a failure yields no partial output.
package pdf

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/platform/apperr"
)

var (
	colorBrand     = &props.Color{Red: 196, Green: 156, Blue: 60} // company gold
	colorWhite     = &props.Color{Red: 255, Green: 255, Blue: 255}
	colorPrimary   = &props.Color{Red: 17, Green: 24, Blue: 39}
	colorSecondary = &props.Color{Red: 107, Green: 114, Blue: 128}
	colorTableHead = &props.Color{Red: 243, Green: 244, Blue: 246}
	colorTableAlt  = &props.Color{Red: 249, Green: 250, Blue: 251}
	colorBorder    = &props.Color{Red: 229, Green: 231, Blue: 235}
)

// GenerateInvoicePDF renders the quote as an A4 invoice document.
func GenerateInvoicePDF(quote domain.Quote) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(12).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	if err := m.RegisterFooter(buildFooter(quote)); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "register invoice footer", err)
	}

	m.AddRows(buildHeader()...)
	m.AddRows(row.New(4))
	m.AddRows(buildIdentityBlock(quote)...)
	m.AddRows(row.New(4))
	m.AddRows(buildPartiesBlock(quote)...)
	m.AddRows(row.New(6))
	m.AddRows(buildItemsTable(quote)...)
	m.AddRows(row.New(4))
	m.AddRows(buildTotalsBlock(quote)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "generate invoice", err)
	}
	return doc.GetBytes(), nil
}

func buildHeader() []core.Row {
	return []core.Row{
		row.New(14).Add(
			col.New(12).Add(text.New("Quote", props.Text{
				Size:  16,
				Style: fontstyle.Bold,
				Color: colorWhite,
				Top:   3,
				Left:  2,
			})),
		).WithStyle(&props.Cell{BackgroundColor: colorBrand}),
	}
}

func buildIdentityBlock(quote domain.Quote) []core.Row {
	issued := quote.CreatedAt.Format("1/2/2006")
	return []core.Row{
		row.New(5).Add(
			col.New(6).Add(text.New("Quote ID", props.Text{Size: 8, Color: colorSecondary})),
			col.New(6).Add(text.New("Date Issued", props.Text{Size: 8, Color: colorSecondary, Align: align.Right})),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(quote.Invoice, props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary})),
			col.New(6).Add(text.New(issued, props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right})),
		),
		row.New(2).WithStyle(&props.Cell{BorderType: border.Bottom, BorderColor: colorBorder}),
	}
}

func buildPartiesBlock(quote domain.Quote) []core.Row {
	client := quote.ClientInfo
	rows := []core.Row{
		row.New(5).Add(
			col.New(6).Add(text.New("Bill To:", props.Text{Size: 8, Color: colorSecondary})),
			col.New(6).Add(text.New("From:", props.Text{Size: 8, Color: colorSecondary, Align: align.Right})),
		),
		row.New(5).Add(
			col.New(6).Add(text.New(quote.ClientName(), props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary})),
			col.New(6).Add(text.New(quote.User.Name, props.Text{Size: 9, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right})),
		),
		row.New(4).Add(
			col.New(6).Add(text.New("Phone: "+client.PhoneNumber, props.Text{Size: 8, Color: colorPrimary})),
			col.New(6).Add(text.New("Phone: "+quote.User.PhoneNumber, props.Text{Size: 8, Color: colorPrimary, Align: align.Right})),
		),
		row.New(4).Add(
			col.New(6).Add(text.New("Email: "+client.Email, props.Text{Size: 8, Color: colorPrimary})),
			col.New(6).Add(text.New("Email: "+quote.User.Email, props.Text{Size: 8, Color: colorPrimary, Align: align.Right})),
		),
		row.New(4).Add(
			col.New(12).Add(text.New("Address: "+clientAddress(client), props.Text{Size: 8, Color: colorPrimary})),
		),
		row.New(2).WithStyle(&props.Cell{BorderType: border.Bottom, BorderColor: colorBorder}),
	}
	return rows
}

func clientAddress(client domain.ClientInfo) string {
	addr := client.Address
	if client.Units != "" {
		addr += ", Unit " + client.Units
	}
	if client.City != "" {
		addr += ", " + client.City
	}
	if client.Province != "" {
		addr += ", " + client.Province
	}
	if client.PostalCode != "" {
		addr += " " + client.PostalCode
	}
	return addr
}

func buildItemsTable(quote domain.Quote) []core.Row {
	headerStyle := props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary, Top: 1.5}
	headerStyleRight := props.Text{Size: 8, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1.5}

	rows := []core.Row{
		row.New(7).Add(
			col.New(6).Add(text.New("Service Type", headerStyle)),
			col.New(3).Add(text.New("QTY", headerStyle)),
			col.New(3).Add(text.New("Total", headerStyleRight)),
		).WithStyle(&props.Cell{
			BackgroundColor: colorTableHead,
			BorderType:      border.Bottom,
			BorderColor:     colorBorder,
		}),
	}

	for i, line := range quote.Services {
		rows = append(rows, buildItemRow(line, i))
	}
	return rows
}

func buildItemRow(line domain.ServiceLine, idx int) core.Row {
	normalStyle := props.Text{Size: 8, Color: colorPrimary, Top: 1}
	rightStyle := props.Text{Size: 8, Color: colorPrimary, Align: align.Right, Top: 1}

	total := line.Total
	if total == 0 {
		total = line.Subtotal
	}

	r := row.New(7).Add(
		col.New(6).Add(text.New(line.ServiceType.Label(), normalStyle)),
		col.New(3).Add(text.New(line.QuantityLabel(), normalStyle)),
		col.New(3).Add(text.New(domain.FormatMoney(total), rightStyle)),
	)
	if idx%2 == 0 {
		r.WithStyle(&props.Cell{BackgroundColor: colorTableAlt})
	}
	return r
}

func buildTotalsBlock(quote domain.Quote) []core.Row {
	labelStyle := props.Text{Size: 9, Color: colorSecondary, Align: align.Right}
	valueStyle := props.Text{Size: 9, Color: colorPrimary, Align: align.Right}

	return []core.Row{
		row.New(6).Add(
			col.New(9).Add(text.New("Subtotal", labelStyle)),
			col.New(3).Add(text.New(domain.FormatMoney(quote.Subtotal), valueStyle)),
		),
		row.New(6).Add(
			col.New(9).Add(text.New("Discount", labelStyle)),
			col.New(3).Add(text.New("-"+domain.FormatMoney(quote.Discount.Flat), valueStyle)),
		),
		row.New(6).Add(
			col.New(9).Add(text.New("Tax", labelStyle)),
			col.New(3).Add(text.New(domain.FormatMoney(quote.TaxValue), valueStyle)),
		),
		row.New(8).Add(
			col.New(9).Add(text.New("Total", props.Text{Size: 10, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(domain.FormatMoney(quote.Total), props.Text{Size: 10, Style: fontstyle.Bold, Color: colorPrimary, Align: align.Right, Top: 1})),
		).WithStyle(&props.Cell{BorderType: border.Top, BorderColor: colorBorder}),
	}
}

func buildFooter(quote domain.Quote) core.Row {
	footer := fmt.Sprintf("Quote %s", quote.Invoice)
	if quote.User.Name != "" {
		footer += "  ·  Prepared by " + quote.User.Name
	}
	if quote.User.Email != "" {
		footer += "  ·  " + quote.User.Email
	}

	return row.New(10).Add(
		col.New(12).Add(text.New(footer, props.Text{
			Size:  6.5,
			Color: colorSecondary,
			Align: align.Center,
			Top:   4,
		})),
	).WithStyle(&props.Cell{BorderType: border.Top, BorderColor: colorBorder})
}
