package core

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

// ============================================================================
// Conversion Benchmarks
// ============================================================================

// BenchmarkParseNumber covers the cleanup paths hit for numeric CSV columns.
func BenchmarkParseNumber(b *testing.B) {
	inputs := []string{
		"123",
		"-456.78",
		"$1,234.56",
		"(123.45)",
		"  999.99  ",
		"€1234.56",
		"not a number",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			ParseNumber(in)
		}
	}
}

func BenchmarkParseDate(b *testing.B) {
	inputs := []string{"2024-01-15", "01/15/2024", "1/5/2024", "Jan 15, 2024"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, in := range inputs {
			ParseDate(in, time.UTC)
		}
	}
}

// ============================================================================
// CSV Benchmarks
// ============================================================================

func benchmarkCSV(rows int) string {
	var sb strings.Builder
	sb.WriteString("First Name,Last Name,Email,Phone,Property Type,Property Address,Property City,Property State,Property Zip,Estimated Value,Notes\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "First%d,Last%d,lead%d@example.com,555-%04d,single family,\"%d Main St, Unit 2\",Austin,TX,73301,\"$%d,000\",call after 5\n",
			i, i, i, i%10000, i, 100+i%900)
	}
	return sb.String()
}

func BenchmarkParseCSV(b *testing.B) {
	for _, rows := range []int{100, 10000} {
		text := benchmarkCSV(rows)
		b.Run(fmt.Sprintf("rows=%d", rows), func(b *testing.B) {
			b.SetBytes(int64(len(text)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ParseCSV(text); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSplitCSVLine(b *testing.B) {
	line := `Ann,"Lee, Jr.",ann@example.com,555-0100,CONDO,"1 Main St, Apt 4",Austin,TX,73301,350000`
	for i := 0; i < b.N; i++ {
		SplitCSVLine(line)
	}
}

func BenchmarkGenerateCSV(b *testing.B) {
	leads := make([]Lead, 1000)
	for i := range leads {
		leads[i] = sampleLead()
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		GenerateCSV(leads, time.UTC)
	}
}

func BenchmarkPredicateMatches(b *testing.B) {
	lead := sampleLead()
	minValue := 100000.0
	p := NewPredicate(SearchFilters{
		Search:            "oak",
		Status:            StatusUnderContract,
		EstimatedValueMin: &minValue,
	}, AdvancedSearchFields, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Matches(&lead)
	}
}
