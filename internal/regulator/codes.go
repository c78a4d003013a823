// Package regulator holds the closed regulator enumeration and the
// LLM-backed advisor that maps a company profile onto it.
package regulator

import "strings"

// Code identifies a Nigerian regulator. The enumeration is closed and
// domain-specific; it is not configurable at runtime.
type Code string

// Known regulator codes.
const (
	CBN    Code = "CBN"
	NDPC   Code = "NDPC"
	NDIC   Code = "NDIC"
	SEC    Code = "SEC"
	FCCPC  Code = "FCCPC"
	EFCC   Code = "EFCC"
	NAICOM Code = "NAICOM"
)

// entry pairs a code with the human-readable description used in prompts.
type entry struct {
	Code        Code
	Description string
}

// table is the full enumeration in prompt order.
var table = []entry{
	{CBN, "Central Bank of Nigeria - Regulates banks, payment service providers, fintech, and financial institutions"},
	{NDPC, "Nigeria Data Protection Commission - Regulates data protection and privacy compliance"},
	{NDIC, "Nigeria Deposit Insurance Corporation - Regulates deposit-taking institutions"},
	{SEC, "Securities and Exchange Commission - Regulates capital markets, investments, securities"},
	{FCCPC, "Federal Competition and Consumer Protection Commission - Regulates consumer protection and fair competition"},
	{EFCC, "Economic and Financial Crimes Commission - Regulates anti-money laundering and financial crimes prevention"},
	{NAICOM, "National Insurance Commission - Regulates insurance companies and related services"},
}

// known is the membership set derived from table.
var known = func() map[Code]struct{} {
	m := make(map[Code]struct{}, len(table))
	for _, e := range table {
		m[e.Code] = struct{}{}
	}
	return m
}()

// IsKnown reports whether code is part of the enumeration.
func IsKnown(code string) bool {
	_, ok := known[Code(code)]
	return ok
}

// Codes returns every known code in table order.
func Codes() []Code {
	out := make([]Code, len(table))
	for i, e := range table {
		out[i] = e.Code
	}
	return out
}

// promptTable renders the enumeration as a bulleted list for prompts.
func promptTable() string {
	var b strings.Builder
	for _, e := range table {
		b.WriteString("- ")
		b.WriteString(string(e.Code))
		b.WriteString(": ")
		b.WriteString(e.Description)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
