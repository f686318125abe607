package mailer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// BudgetAlertMessage builds the threshold-crossed alert for a user's default
// account.
func BudgetAlertMessage(to, userName, accountName string, percentageUsed float64, budgetAmount, totalExpenses decimal.Decimal) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", userName)
	fmt.Fprintf(&b, "You have used %.1f%% of your monthly budget on account %q.\n\n", percentageUsed, accountName)
	fmt.Fprintf(&b, "Budget:         %s\n", budgetAmount.StringFixed(2))
	fmt.Fprintf(&b, "Spent so far:   %s\n", totalExpenses.StringFixed(2))
	fmt.Fprintf(&b, "Remaining:      %s\n", budgetAmount.Sub(totalExpenses).StringFixed(2))
	b.WriteString("\nConsider reviewing your spending for the rest of the month.\n")

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Budget Alert for %s", accountName),
		Body:    b.String(),
	}
}

// MonthlyReportMessage builds the prior-month summary for one user.
func MonthlyReportMessage(to, userName, monthName string, totalIncome, totalExpenses decimal.Decimal, byCategory map[string]decimal.Decimal, transactionCount int) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", userName)
	fmt.Fprintf(&b, "Here is your financial summary for %s:\n\n", monthName)
	fmt.Fprintf(&b, "Total income:   %s\n", totalIncome.StringFixed(2))
	fmt.Fprintf(&b, "Total expenses: %s\n", totalExpenses.StringFixed(2))
	fmt.Fprintf(&b, "Net:            %s\n", totalIncome.Sub(totalExpenses).StringFixed(2))
	fmt.Fprintf(&b, "Transactions:   %d\n", transactionCount)

	if len(byCategory) > 0 {
		b.WriteString("\nExpenses by category:\n")
		categories := make([]string, 0, len(byCategory))
		for category := range byCategory {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			fmt.Fprintf(&b, "  %-16s %s\n", category, byCategory[category].StringFixed(2))
		}
	}

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your Monthly Financial Report - %s", monthName),
		Body:    b.String(),
	}
}
