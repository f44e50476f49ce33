package parser

import "testing"

func TestBendigoParser(t *testing.T) {
	page := `Bendigo Bank
Opening balance $2,500.00
Date Transaction Withdrawals Deposits Balance
05 Jan 24 EFTPOS GROCER 25.00 2,475.00
06 Jan 24 DIRECT CREDIT WAGES 500.00 2,975.00
AND ALLOWANCES
Transaction totals 525.00
Statement Number 7`

	result, err := (&BendigoParser{}).Parse(textDoc(page))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records := result.Records
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d: %+v", len(records), records)
	}

	if !records[0].Synthetic || records[0].BalanceText != "2,500.00" {
		t.Errorf("opening anchor = %+v", records[0])
	}

	eftpos := records[1]
	if eftpos.DateText != "05 Jan 24" {
		t.Errorf("date = %q", eftpos.DateText)
	}
	if eftpos.AmountText != "25.00" || eftpos.BalanceText != "2,475.00" {
		t.Errorf("amounts = %q/%q", eftpos.AmountText, eftpos.BalanceText)
	}

	wages := records[2]
	if wages.Description != "DIRECT CREDIT WAGES AND ALLOWANCES" {
		t.Errorf("description = %q", wages.Description)
	}
	if wages.AmountText != "500.00" || wages.BalanceText != "2,975.00" {
		t.Errorf("amounts = %q/%q", wages.AmountText, wages.BalanceText)
	}

	closing := records[3]
	if !closing.Synthetic || closing.BalanceText != "2,975.00" {
		t.Errorf("closing anchor = %+v", closing)
	}
}

func TestBendigoParserNoHeader(t *testing.T) {
	_, err := (&BendigoParser{}).Parse(textDoc("Bendigo branded page, no table"))
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.Reason != ReasonNoHeader {
		t.Errorf("reason = %q", pe.Reason)
	}
}
