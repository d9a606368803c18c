package email

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
)

//go:embed templates/statement.html
var statementTemplateHTML string

var statementTemplate = template.Must(template.New("statement").Parse(statementTemplateHTML))

type StatementEmailData struct {
	BusinessName       string
	CustomerName       string
	StatementNumber    string
	PeriodStart        string
	PeriodEnd          string
	TotalSales         string
	TotalPayments      string
	OutstandingBalance string
}

// SendStatement renders the statement template and delivers it to one
// recipient.
func SendStatement(ctx context.Context, p Provider, to string, data StatementEmailData) error {
	var body bytes.Buffer
	if err := statementTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render statement email: %w", err)
	}

	subject := fmt.Sprintf("Statement %s from %s", data.StatementNumber, data.BusinessName)
	return p.Send(ctx, []string{to}, subject, body.String())
}
