package letter

import (
	"strings"
	"testing"
	"time"
)

var testIdentity = Identity{
	FullName:    "Dana Consumer",
	AddressLine: "12 Elm Street",
	City:        "Austin",
	State:       "TX",
	PostalCode:  "78701",
	SSNLast4:    "4321",
	Date:        time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
}

var testItems = []Item{
	{AccountID: "a1", AccountName: "Midland Funding", Reason: "Account not mine", Instruction: "Remove from report"},
	{AccountID: "a2", AccountName: "Capital One", Reason: "Balance is incorrect", Instruction: "Validate with creditor"},
}

func TestGenerate_Deterministic(t *testing.T) {
	first := Generate(BureauEquifax, testIdentity, testItems)
	second := Generate(BureauEquifax, testIdentity, testItems)
	if first != second {
		t.Fatal("expected byte-identical output for identical inputs")
	}
}

func TestGenerate_ContainsAllSections(t *testing.T) {
	out := Generate(BureauTransUnion, testIdentity, testItems)

	for _, want := range []string{
		"March 5, 2024",
		"Dana Consumer",
		"12 Elm Street",
		"Austin, TX 78701",
		"TransUnion Consumer Solutions",
		"Chester, PA 19016",
		"Midland Funding (account a1): Account not mine. Requested action: Remove from report.",
		"Capital One (account a2): Balance is incorrect. Requested action: Validate with creditor.",
		"15 U.S.C. § 1681i",
		"Sincerely,",
		"SSN (last four): 4321",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("letter missing %q", want)
		}
	}
}

func TestGenerate_EmptyItemsYieldsShell(t *testing.T) {
	out := Generate(BureauExperian, testIdentity, nil)

	if out == "" {
		t.Fatal("expected non-empty shell")
	}
	if !strings.Contains(out, "Experian") {
		t.Error("shell missing bureau name")
	}
	if !strings.Contains(out, "Dana Consumer") {
		t.Error("shell missing identity block")
	}
	if strings.Contains(out, "\n- ") {
		t.Error("shell must not contain bullet lines")
	}
}

func TestGenerate_PerBureauAddressBlocks(t *testing.T) {
	for bureau, wantLine := range map[Bureau]string{
		BureauEquifax:    "Atlanta, GA 30374",
		BureauTransUnion: "Chester, PA 19016",
		BureauExperian:   "Allen, TX 75013",
	} {
		out := Generate(bureau, testIdentity, testItems)
		if !strings.Contains(out, wantLine) {
			t.Errorf("%s letter missing address line %q", bureau, wantLine)
		}
	}
}

func TestMetro2Code_Mapping(t *testing.T) {
	code, color := Metro2Code("Wrong account number")
	if code != "36" {
		t.Fatalf("expected code 36, got %q", code)
	}
	if color == DefaultHighlight {
		t.Fatalf("mapped reason should not use the neutral highlight")
	}

	code, color = Metro2Code("Something nobody mapped")
	if code != DefaultMetro2Code {
		t.Fatalf("expected default code %s, got %q", DefaultMetro2Code, code)
	}
	if color != DefaultHighlight {
		t.Fatalf("expected neutral highlight, got %q", color)
	}
}

func TestGenerateMetro2_AnnotatesBullets(t *testing.T) {
	out := GenerateMetro2(BureauEquifax, testIdentity, testItems)

	if !strings.Contains(out, "[Metro-2 error code 02]") {
		t.Error("missing code for 'Account not mine'")
	}
	if !strings.Contains(out, "[Metro-2 error code 21]") {
		t.Error("missing code for 'Balance is incorrect'")
	}

	unmapped := []Item{{AccountID: "x", AccountName: "X", Reason: "Unmapped reason", Instruction: "Fix"}}
	out = GenerateMetro2(BureauEquifax, testIdentity, unmapped)
	if !strings.Contains(out, "[Metro-2 error code 99]") {
		t.Error("unmapped reason must fall back to code 99")
	}
}

func TestBureaus_FixedSet(t *testing.T) {
	set := Bureaus()
	if len(set) != 3 {
		t.Fatalf("expected 3 bureaus, got %d", len(set))
	}
	for _, b := range set {
		if !IsValidBureau(b) {
			t.Fatalf("bureau %q failed validation", b)
		}
	}
	if IsValidBureau("Innovis") {
		t.Fatal("Innovis is not part of the fixed set")
	}
}
