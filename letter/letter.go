package letter

import (
	"fmt"
	"strings"
	"time"
)

// Bureau is one of the three consumer credit reporting agencies.
type Bureau string

const (
	BureauEquifax    Bureau = "Equifax"
	BureauTransUnion Bureau = "TransUnion"
	BureauExperian   Bureau = "Experian"
)

// Bureaus returns the fixed set of bureaus every dispute fans out to.
func Bureaus() [3]Bureau {
	return [3]Bureau{BureauEquifax, BureauTransUnion, BureauExperian}
}

// IsValidBureau reports whether b is one of the three fixed bureaus.
func IsValidBureau(b Bureau) bool {
	switch b {
	case BureauEquifax, BureauTransUnion, BureauExperian:
		return true
	default:
		return false
	}
}

// bureauAddresses holds the dispute mailing address block per bureau.
var bureauAddresses = map[Bureau][]string{
	BureauEquifax:    {"Equifax Information Services LLC", "P.O. Box 740256", "Atlanta, GA 30374"},
	BureauTransUnion: {"TransUnion Consumer Solutions", "P.O. Box 2000", "Chester, PA 19016"},
	BureauExperian:   {"Experian", "P.O. Box 4500", "Allen, TX 75013"},
}

// Identity is the sender block printed on every letter. Date is supplied by
// the caller so generation stays deterministic.
type Identity struct {
	FullName    string
	AddressLine string
	City        string
	State       string
	PostalCode  string
	SSNLast4    string
	Date        time.Time
}

// Item is one disputed tradeline rendered as a letter bullet.
type Item struct {
	AccountID   string
	AccountName string
	Reason      string
	Instruction string
}

// Generate renders a per-bureau dispute letter. It is a pure function: the
// same inputs always produce the same string, and an empty item list still
// yields a valid letter shell.
func Generate(bureau Bureau, id Identity, items []Item) string {
	var b strings.Builder
	writeHeader(&b, bureau, id)

	b.WriteString("I am writing to dispute the following information appearing on my credit report. ")
	b.WriteString("Each item listed below is inaccurate or incomplete, and I request that it be reinvestigated.\n\n")

	for _, item := range items {
		writeBullet(&b, item, "")
	}
	if len(items) > 0 {
		b.WriteString("\n")
	}

	writeFooter(&b, id)
	return b.String()
}

func writeHeader(b *strings.Builder, bureau Bureau, id Identity) {
	b.WriteString(id.Date.Format("January 2, 2006"))
	b.WriteString("\n\n")

	b.WriteString(id.FullName)
	b.WriteString("\n")
	if id.AddressLine != "" {
		b.WriteString(id.AddressLine)
		b.WriteString("\n")
	}
	if id.City != "" || id.State != "" || id.PostalCode != "" {
		fmt.Fprintf(b, "%s, %s %s\n", id.City, id.State, id.PostalCode)
	}
	b.WriteString("\n")

	for _, line := range bureauAddresses[bureau] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(b, "Re: Request for investigation of inaccurate information (%s)\n\n", bureau)
	b.WriteString("To Whom It May Concern:\n\n")
}

func writeBullet(b *strings.Builder, item Item, annotation string) {
	fmt.Fprintf(b, "- %s (account %s): %s. Requested action: %s.", item.AccountName, item.AccountID, item.Reason, item.Instruction)
	if annotation != "" {
		b.WriteString(" ")
		b.WriteString(annotation)
	}
	b.WriteString("\n")
}

func writeFooter(b *strings.Builder, id Identity) {
	b.WriteString("Under the Fair Credit Reporting Act, 15 U.S.C. § 1681i, you are required to ")
	b.WriteString("reinvestigate these items free of charge and to delete or correct any information ")
	b.WriteString("that cannot be verified within 30 days of receipt of this letter.\n\n")
	b.WriteString("Please send written confirmation of the results of your investigation along with ")
	b.WriteString("an updated copy of my credit report.\n\n")
	b.WriteString("Sincerely,\n\n")
	b.WriteString(id.FullName)
	b.WriteString("\n")
	if id.SSNLast4 != "" {
		fmt.Fprintf(b, "SSN (last four): %s\n", id.SSNLast4)
	}
}
