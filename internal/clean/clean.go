package clean

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"constituent-clean/internal/table"
	"constituent-clean/internal/warn"
)

const Stage = "normalize"

// Canonical column names shared across stages.
const (
	SrcLookupID = "Constituent LookupID"
	ColLID      = "LID"
	ColLat      = "Latitude"
	ColLng      = "Longitude"
	ColAddress  = "Primary Address"
	ColStatus   = "donor_status"
	ColAge      = "Age"

	ColHomeAddress = "Home Address"
	ColHomeCity    = "Home City"
	ColHomeState   = "Home State"
	ColHomeZip     = "Home Zip"
	ColHomeCountry = "Home Country"

	// Source headers carry an embedded newline straight out of the export.
	ColISRLifetime = "Institute for Social Research\nLifetime Recognition"
	ColUMLifetime  = "UM-Wide\nLifetime Recognition"

	ColISRNumeric = "Institute for Social Research Lifetime Recognition Numeric"
	ColUMNumeric  = "UM-Wide Lifetime Recognition Numeric"

	StatusISR = "ISR Donor"
	StatusUM  = "UM Donor"
	StatusNon = "Non Donor"
)

// HomeAddressColumns are the five components a geocodable address requires.
var HomeAddressColumns = []string{
	ColHomeAddress, ColHomeCity, ColHomeState, ColHomeZip, ColHomeCountry,
}

// droppedColumns is the export cruft removed before any other transform.
// Absent names are tolerated; the export format drifts between pulls.
var droppedColumns = []string{
	"Other Country.1", "Other Major Gift Region.1", "Other Primary Metro.1",
	"Other Zip.1", "Other State.1", "Other City.1", "Other Address.1",
	"Other Address Incomplete?.1", "Other Type.1", "Other Country",
	"Other Major Gift Region", "Other Primary Metro", "Other Zip",
	"Other State", "Other City", "Other Address", "Other Address Is Primary?",
	"Other Address Incomplete?", "Other Type", "Home Address Incomplete?",
	"Home Address Is Primary?", "Work Country", "Work Primary Metro Area",
	"Work Major Gift Region", "Work Phone", "Work County", "Work Zip",
	"Work State", "Work City", "Work Address", "Work Address Is Primary?",
	"Work Address Incomplete?", "Career Level", "Full Name", "Title",
	"First Name", "Last/Name/Org Name", "Committee Name", "Committee Role",
	"Former Commitee Name", "Former Committee Role", "Spouse LookupID",
	"Formal Mailing Name (Joint/Individual)",
	"Informal Mailing Name (Joint/Individual)", "Payments Received",
	"Expectancies (Balance Due)", "Commitments (Balance Due)",
	"# of Recognition Transactions", "Number of Years of Recognition",
	"One-Time Gifts", "Commitments", "Expectancies", "A.6", "A.7", "A.5",
	"A.4", "A.8", "Payments Received.1", "A.9", "Commitments (Balance Due).1",
	"A.10", "Expectancies (Balance Due).1", "A.11", "Last Amount",
	"Last Designation", "# of Recognition Transactions.1",
	"Number of Years of Recognition.1", " Campaign Recognition", "A.12",
	"One-Time Gifts.1", "Commitments.1", "A.13", "A.14", "Expectancies.1",
	"A.15", "Last Visit/Introduction by", "Interaction Type", "Job Category",
	"Home Phone", "Monteith Society", "Primary Capacity Rating Type",
	"Primary Capacity Rating Date", "Primary Inclination Rating Type",
	"Primary Inclination Rating Date", "Gift Officer Field Rating",
	"Gift Officer Field Rating Date", "Research Rating",
	"Research Rating Date", "Capacity Verified Rating",
	"Capacity Verified Rating Date", "Capacity Unverified Rating",
	"Capacity Unverified Rating Date", "Blackbaud Hard Asset",
	"Blackbaud Hard Asset Date", "Wealth-X Net Worth",
	"Wealth-X Net Worth Date", "Windfall Data Net Worth",
	"Windfall Data Net Worth Date", "Target Analytics Net Worth",
	"Target Analytics Net Worth Date", "PDA UM Inclination",
	"UM AG Propensity", "Med Primary Manager",
}

// Normalize reworks a raw export table into the canonical schema: drops the
// fixed column set, renames the lookup id to LID, canonicalizes coordinate
// columns, and derives Primary Address, donor_status, the numeric lifetime
// recognition fields, and Age.
//
// When the lookup id cannot be established the table is returned as-is with
// a warning; downstream stages tolerate the missing LID. This is a
// recoverable state, not an abort.
func Normalize(t *table.Table) []warn.Warning {
	var ws []warn.Warning

	t.Drop(droppedColumns...)

	if t.HasColumn(SrcLookupID) {
		t.Rename(SrcLookupID, ColLID)
	} else if !t.HasColumn(ColLID) {
		log.Printf("normalize: column %q not found", SrcLookupID)
	}
	if !t.HasColumn(ColLID) {
		ws = append(ws, warn.Table(Stage, ColLID,
			"lookup id missing; returning partially-normalized table"))
		return ws
	}

	ensureCoordinates(t)

	t.AddColumn(ColAddress, table.String)
	t.AddColumn(ColStatus, table.String)
	t.AddColumn(ColISRNumeric, table.Float)
	t.AddColumn(ColUMNumeric, table.Float)
	t.SetKind(ColAge, table.Int)

	for i := 0; i < t.Len(); i++ {
		street, _ := t.Get(i, ColHomeAddress)
		city, _ := t.Get(i, ColHomeCity)
		state, _ := t.Get(i, ColHomeState)
		zip, _ := t.Get(i, ColHomeZip)
		country, _ := t.Get(i, ColHomeCountry)
		t.Set(i, ColAddress, PrimaryAddress(street, city, state, zip, country))

		isr, _ := t.Get(i, ColISRLifetime)
		um, _ := t.Get(i, ColUMLifetime)
		t.Set(i, ColStatus, DonorStatus(isr, um))
		t.Set(i, ColISRNumeric, ParseMoney(isr))
		t.Set(i, ColUMNumeric, ParseMoney(um))

		age, _ := t.Get(i, ColAge)
		t.Set(i, ColAge, ParseAge(age))
	}

	return ws
}

func ensureCoordinates(t *table.Table) {
	if t.HasColumn("latitude") && t.HasColumn("longitude") {
		t.Rename("latitude", ColLat)
		t.Rename("longitude", ColLng)
	}
	if !t.HasColumn(ColLat) || !t.HasColumn(ColLng) {
		t.AddColumn(ColLat, table.Float)
		t.AddColumn(ColLng, table.Float)
	}
	t.SetKind(ColLat, table.Float)
	t.SetKind(ColLng, table.Float)
}

// PrimaryAddress composes the single-line home address. Missing components
// render as the literal "None", matching the historical output.
func PrimaryAddress(street, city, state, zip, country any) string {
	return fmt.Sprintf("%s, %s, %s %s, %s",
		orNone(street), orNone(city), orNone(state), orNone(zip), orNone(country))
}

func orNone(v any) string {
	if v == nil {
		return "None"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// DonorStatus derives the categorical status from the two lifetime
// recognition fields. ISR wins when both are present.
func DonorStatus(isr, um any) string {
	if isr != nil {
		return StatusISR
	}
	if um != nil {
		return StatusUM
	}
	return StatusNon
}

// ParseMoney strips currency formatting ("$1,234.50" -> 1234.5). Missing or
// unparseable values coerce to 0.
func ParseMoney(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		s := strings.TrimSpace(n)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.ReplaceAll(s, "$", "")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// ParseAge coerces to a non-negative int; anything non-numeric becomes 0.
func ParseAge(v any) int {
	switch n := v.(type) {
	case nil:
		return 0
	case int:
		if n < 0 {
			return 0
		}
		return n
	case float64:
		if n < 0 {
			return 0
		}
		return int(n)
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.Atoi(s); err == nil && i >= 0 {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
			return int(f)
		}
		return 0
	}
	return 0
}
