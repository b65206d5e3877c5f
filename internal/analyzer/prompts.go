package analyzer

import (
	"encoding/json"
	"fmt"
	"strings"

	"forefunds/internal/core"
)

// maxStatementChars bounds the statement text pasted into a prompt.
const maxStatementChars = 100_000

func categoryList() string {
	names := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

func screenshotPrompt(today core.Date) string {
	return fmt.Sprintf(`Analyze the UPI screenshot. Extract all transactions into a valid JSON array. `+
		`Each object needs keys: "amount" (number), "description" (string), "date" (string, "YYYY-MM-DD"), `+
		`"type" (string, "expense" or "income"), and "category" (infer from %s). Today is %s. `+
		`Example: [{"amount": 150.75, "description": "Zomato", "date": "2025-09-24", "type": "expense", "category": "Food"}]`,
		categoryList(), today)
}

func statementPrompt(today core.Date, text string) string {
	p := fmt.Sprintf(`Analyze this bank statement. Extract all transactions into a valid JSON array. `+
		`Each object needs keys: "amount" (number, always positive), "description" (string), "date" (string, "YYYY-MM-DD"), `+
		`"type" (string, "income" for credits, "expense" for debits), and "category" (infer from %s). `+
		`Current year is %d. Ignore summaries.`,
		categoryList(), today.Year())
	if text == "" {
		return p
	}
	if len(text) > maxStatementChars {
		text = text[:maxStatementChars]
	}
	return p + " Text: \n\n " + text
}

// InsightRow is one transaction as shown to the model.
type InsightRow struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
}

// InsightsPrompt asks for a Markdown summary of the month's transactions.
func InsightsPrompt(today core.Date, balance core.Money, txs []core.Transaction) (string, error) {
	rows := make([]InsightRow, len(txs))
	for i, t := range txs {
		rows[i] = InsightRow{
			Amount:      t.Amount.Rupees(),
			Description: t.Description,
			Date:        t.Date.String(),
			Type:        string(t.Type),
			Category:    string(t.Category),
		}
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode transactions: %w", err)
	}

	return fmt.Sprintf("You are ForeFunds, a friendly financial assistant for a user in India. "+
		"Analyze these JSON transactions for the current month. Today's Date: %s. Current Net Balance: %s. \n\n %s \n\n "+
		"Provide a concise, easy-to-read summary of the analysis in well-structured Markdown. The summary should include:\n\n"+
		"### Spending Summary\n- A brief overview of the top 2-3 spending categories.\n\n"+
		"### Savings Suggestions\n- 2-3 actionable savings tips based on their specific spending.\n\n"+
		"### Future Forecast\n- A narrative forecast for their end-of-month spending.",
		today.Format("02/01/2006"), core.FormatINR(balance.Cents), data), nil
}
