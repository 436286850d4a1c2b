package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/tonesnap/internal/llm"
	"github.com/abhisek/tonesnap/internal/store"
)

// printSummary writes answer counts, token usage by purpose and the
// estimated cost per model recorded during this process.
func printSummary(ctx context.Context, w io.Writer, repo store.EventRepo) error {
	answers, err := repo.AnswerSummary(ctx)
	if err != nil {
		return fmt.Errorf("query answers: %w", err)
	}
	stats, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		return fmt.Errorf("query usage: %w", err)
	}
	if len(stats) == 0 && answers.Answered == 0 {
		return nil
	}

	if answers.Answered > 0 {
		fmt.Fprintf(w, "Answered %d questions in %d rounds, %d correct.\n\n",
			answers.Answered, answers.Sessions, answers.Correct)
	}
	if len(stats) == 0 {
		return nil
	}

	fmt.Fprintln(w, "Usage by Purpose")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-16s  %6s  %6s  %10s  %10s  %8s\n",
		"Purpose", "Calls", "Failed", "Input", "Output", "Avg Ms")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	var totalCalls, totalFailed, totalIn, totalOut int
	for _, st := range stats {
		fmt.Fprintf(w, "%-16s  %6d  %6d  %10d  %10d  %8d\n",
			st.Purpose, st.Calls, st.Failures, st.InputTokens, st.OutputTokens, st.AvgLatencyMs)
		totalCalls += st.Calls
		totalFailed += st.Failures
		totalIn += st.InputTokens
		totalOut += st.OutputTokens
	}
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-16s  %6d  %6d  %10d  %10d\n",
		"TOTAL", totalCalls, totalFailed, totalIn, totalOut)

	modelUsage, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		return fmt.Errorf("query model usage: %w", err)
	}
	if len(modelUsage) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Estimated Cost (USD)")
	fmt.Fprintln(w, strings.Repeat("─", 72))
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n",
		"Model", "Calls", "Input", "Output", "Cost")
	fmt.Fprintln(w, strings.Repeat("─", 72))

	var totalCost float64
	var unknownModels []string
	for _, mu := range modelUsage {
		cost := llm.LookupCost(mu.Model)
		if cost == nil {
			unknownModels = append(unknownModels, mu.Model)
			fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
				truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, "?")
			continue
		}
		c := cost.Cost(mu.InputTokens, mu.OutputTokens)
		totalCost += c
		fmt.Fprintf(w, "%-32s  %6d  %10d  %10d  %10s\n",
			truncate(mu.Model, 32), mu.Calls, mu.InputTokens, mu.OutputTokens, formatCost(c))
	}

	fmt.Fprintln(w, strings.Repeat("─", 72))
	label := "TOTAL"
	if len(unknownModels) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Fprintf(w, "%-32s  %6s  %10s  %10s  %10s\n", label, "", "", "", formatCost(totalCost))

	if len(unknownModels) > 0 {
		fmt.Fprintf(w, "\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
