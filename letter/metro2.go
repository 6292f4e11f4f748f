package letter

import (
	"fmt"
	"strings"
)

// DefaultMetro2Code annotates reasons with no mapping entry.
const DefaultMetro2Code = "99"

// DefaultHighlight is the neutral color paired with the default code.
const DefaultHighlight = "gray"

type metro2Entry struct {
	Code  string
	Color string
}

// metro2Codes maps a dispute reason to its Metro-2 error code and the
// highlight color the report view uses for it.
var metro2Codes = map[string]metro2Entry{
	"Account not mine":            {Code: "02", Color: "red"},
	"Identity theft":              {Code: "05", Color: "red"},
	"Duplicate account":           {Code: "12", Color: "orange"},
	"Balance is incorrect":        {Code: "21", Color: "yellow"},
	"Payment history inaccurate":  {Code: "24", Color: "yellow"},
	"Account closed by consumer":  {Code: "30", Color: "blue"},
	"Wrong account number":        {Code: "36", Color: "orange"},
	"Incorrect date of first use": {Code: "41", Color: "blue"},
	"Not late as reported":        {Code: "46", Color: "yellow"},
}

// Metro2Code resolves a dispute reason to its error code and highlight color,
// falling back to the neutral default for unmapped reasons.
func Metro2Code(reason string) (code, color string) {
	if entry, ok := metro2Codes[reason]; ok {
		return entry.Code, entry.Color
	}
	return DefaultMetro2Code, DefaultHighlight
}

// GenerateMetro2 renders the Metro-2 annotated variant: the same letter frame
// as Generate, with each bullet carrying the reason's two-digit error code.
func GenerateMetro2(bureau Bureau, id Identity, items []Item) string {
	var b strings.Builder
	writeHeader(&b, bureau, id)

	b.WriteString("I am writing to dispute the following information appearing on my credit report. ")
	b.WriteString("Each item is annotated with the Metro-2 error code describing the reporting defect.\n\n")

	for _, item := range items {
		code, _ := Metro2Code(item.Reason)
		writeBullet(&b, item, fmt.Sprintf("[Metro-2 error code %s]", code))
	}
	if len(items) > 0 {
		b.WriteString("\n")
	}

	writeFooter(&b, id)
	return b.String()
}
