package cliopt

import "testing"

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := ParseFlags("lookup", nil)
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if opts.FieldSep != DefaultFieldSep {
		t.Errorf("FieldSep = %q, want %q", opts.FieldSep, DefaultFieldSep)
	}
	if opts.RecordSep != DefaultRecordSep {
		t.Errorf("RecordSep = %q, want %q", opts.RecordSep, DefaultRecordSep)
	}
	if opts.Invert || opts.Alternates || opts.Unbuffered || opts.SkipArcSort || opts.SuppressEcho || opts.Version || opts.Help {
		t.Errorf("expected all boolean flags false by default, got %+v", opts)
	}
}

func TestParseFlagsShortForms(t *testing.T) {
	opts, err := ParseFlags("lookup", []string{"-i", "-a", "-b", "-q", "-x", "-v", "-s", ",", "-w", ";"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if !opts.Invert || !opts.Alternates || !opts.Unbuffered || !opts.SkipArcSort || !opts.SuppressEcho || !opts.Version {
		t.Errorf("expected all boolean flags true, got %+v", opts)
	}
	if opts.FieldSep != "," {
		t.Errorf("FieldSep = %q, want %q", opts.FieldSep, ",")
	}
	if opts.RecordSep != ";" {
		t.Errorf("RecordSep = %q, want %q", opts.RecordSep, ";")
	}
}

func TestParseFlagsPositionalFiles(t *testing.T) {
	opts, err := ParseFlags("lookup", []string{"-i", "one.fst", "two.fst"})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if len(opts.Files) != 2 || opts.Files[0] != "one.fst" || opts.Files[1] != "two.fst" {
		t.Errorf("Files = %v, want [one.fst two.fst]", opts.Files)
	}
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	if _, err := ParseFlags("lookup", []string{"--bogus"}); err == nil {
		t.Fatal("expected an error for an unknown flag")
	}
}

func TestParseIndexPolicyEmpty(t *testing.T) {
	p, err := ParseIndexPolicy("")
	if err != nil {
		t.Fatalf("ParseIndexPolicy: %v", err)
	}
	if p.MinArcs != 0 || p.BudgetBytes != 0 || p.FlagOnly {
		t.Errorf("empty spec should yield the zero Policy, got %+v", p)
	}
}

func TestParseIndexPolicyFlagOnly(t *testing.T) {
	p, err := ParseIndexPolicy("f")
	if err != nil {
		t.Fatalf("ParseIndexPolicy: %v", err)
	}
	if !p.FlagOnly {
		t.Error("expected FlagOnly policy")
	}
}

func TestParseIndexPolicyMinArcs(t *testing.T) {
	p, err := ParseIndexPolicy("12")
	if err != nil {
		t.Fatalf("ParseIndexPolicy: %v", err)
	}
	if p.MinArcs != 12 {
		t.Errorf("MinArcs = %d, want 12", p.MinArcs)
	}
}

func TestParseIndexPolicyBudgetKB(t *testing.T) {
	p, err := ParseIndexPolicy("4k")
	if err != nil {
		t.Fatalf("ParseIndexPolicy: %v", err)
	}
	if p.BudgetBytes != 4*1024 {
		t.Errorf("BudgetBytes = %d, want %d", p.BudgetBytes, 4*1024)
	}
}

func TestParseIndexPolicyBudgetMB(t *testing.T) {
	p, err := ParseIndexPolicy("2M")
	if err != nil {
		t.Fatalf("ParseIndexPolicy: %v", err)
	}
	if p.BudgetBytes != 2*1024*1024 {
		t.Errorf("BudgetBytes = %d, want %d", p.BudgetBytes, 2*1024*1024)
	}
}

func TestParseIndexPolicyInvalid(t *testing.T) {
	if _, err := ParseIndexPolicy("nope"); err == nil {
		t.Fatal("expected an error for a malformed -I spec")
	}
}
