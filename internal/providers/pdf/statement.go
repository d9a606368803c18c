package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/fx"
)

type StatementData struct {
	BusinessName    string
	StatementNumber string
	PeriodStart     string
	PeriodEnd       string
	IssuedAt        string

	CustomerName    string
	CustomerEmail   string
	CustomerAddress string

	TotalSales         string
	TotalPayments      string
	OutstandingBalance string

	Notes string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

func (p *PDFProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Customer Statement", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Statement number: "+data.StatementNumber, props.Text{Top: 0}),
			text.New("Period: "+data.PeriodStart+" to "+data.PeriodEnd, props.Text{Top: 4}),
			text.New("Issued: "+data.IssuedAt, props.Text{Top: 8}),
		),
		col.New(6),
	)

	m.AddRow(35,
		col.New(6).Add(
			text.New(data.BusinessName, props.Text{Style: fontstyle.Bold}),
		),
		col.New(6).Add(
			text.New("Statement for", props.Text{Style: fontstyle.Bold}),
			text.New(data.CustomerName, props.Text{Top: 5}),
			text.New(data.CustomerEmail, props.Text{Top: 9}),
			text.New(data.CustomerAddress, props.Text{Top: 13}),
		),
	)

	m.AddRow(10,
		text.NewCol(8, "Total sales", props.Text{Size: 9}),
		text.NewCol(4, data.TotalSales, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		text.NewCol(8, "Total payments received", props.Text{Size: 9}),
		text.NewCol(4, data.TotalPayments, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(12,
		text.NewCol(8, "Outstanding balance", props.Text{Style: fontstyle.Bold, Size: 11}),
		text.NewCol(4, data.OutstandingBalance, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right}),
	)

	if data.Notes != "" {
		m.AddRow(25,
			text.NewCol(12, data.Notes, props.Text{Size: 9, Top: 5}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
