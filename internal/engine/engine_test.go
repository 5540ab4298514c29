package engine

import (
	"math"
	"strconv"
	"strings"
	"testing"
)

func TestSeededConstants(t *testing.T) {
	e := New()
	for _, name := range []string{"i", "j"} {
		out := e.EvalCell(name)
		if out.Value.Display() != "(0+1i)" {
			t.Errorf("%s = %s, want (0+1i)", name, out.Value.Display())
		}
	}
	for _, name := range []string{"pi", "π"} {
		out := e.EvalCell(name)
		got := out.Value.Display()
		if !strings.HasPrefix(got, "3.14159") {
			t.Errorf("%s = %s, want to start with 3.14159", name, got)
		}
	}
}

// S1: parallel resistor combination.
func TestScenarioS1(t *testing.T) {
	e := New()
	if got := e.EvalCell("r1 = 10kΩ").Value.Display(); got != "10000 Ω" {
		t.Errorf("r1 = %s", got)
	}
	if got := e.EvalCell("r2 = 15kΩ").Value.Display(); got != "15000 Ω" {
		t.Errorf("r2 = %s", got)
	}
	if got := e.EvalCell("r_eq = r1 // r2").Value.Display(); got != "6000 Ω" {
		t.Errorf("r_eq = %s", got)
	}
}

// S2: Ohm's law, with the V/Ω -> A display collapse.
func TestScenarioS2(t *testing.T) {
	e := New()
	if got := e.EvalCell("r = 10kΩ").Value.Display(); got != "10000 Ω" {
		t.Errorf("r = %s", got)
	}
	if got := e.EvalCell("v = 5 V").Value.Display(); got != "5 V" {
		t.Errorf("v = %s", got)
	}
	if got := e.EvalCell("i = v / r").Value.Display(); got != "0.0005 A" {
		t.Errorf("i = %s", got)
	}
}

// S3: sin(pi()/2) starts with 1.
func TestScenarioS3(t *testing.T) {
	e := New()
	got := e.EvalCell("sin(pi()/2)").Value.Display()
	if !strings.HasPrefix(got, "1") {
		t.Errorf("got %s", got)
	}
}

// S4: cos_deg(60) starts with 0.5.
func TestScenarioS4(t *testing.T) {
	e := New()
	got := e.EvalCell("cos_deg(60)").Value.Display()
	if !strings.HasPrefix(got, "0.5") {
		t.Errorf("got %s", got)
	}
}

// S5: sin(90 deg-as-°) starts with 1.
func TestScenarioS5(t *testing.T) {
	e := New()
	got := e.EvalCell("sin(90 °)").Value.Display()
	if !strings.HasPrefix(got, "1") {
		t.Errorf("got %s", got)
	}
}

// S6: round-trip conversion.
func TestScenarioS6(t *testing.T) {
	e := New()
	if got := e.EvalCell("d = 10 m").Value.Display(); got != "10 m" {
		t.Errorf("d = %s", got)
	}
	got := e.EvalCell("d to in").Value.Display()
	if !strings.HasSuffix(got, " in") {
		t.Errorf("got %s, want a value followed by in", got)
	}
	fields := strings.Fields(got)
	val, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		t.Fatalf("could not parse %q: %v", got, err)
	}
	want := 10 / 0.0254
	if math.Abs(val-want) > 1e-6 {
		t.Errorf("got %v, want %v", val, want)
	}
}

// S7: complex impedance parallel combination contains Ω in its display.
func TestScenarioS7(t *testing.T) {
	e := New()
	e.EvalCell("Zc(f, C) = -1 * i() / (2*pi() * f * C)")
	got := e.EvalCell("Z = 100 Ω // Zc(1000 Hz, 100 nF)").Value.Display()
	if !strings.Contains(got, "Ω") {
		t.Errorf("got %s, want it to contain Ω", got)
	}
	if got2 := e.EvalCell("Z").Value.Display(); !strings.Contains(got2, "Ω") {
		t.Errorf("got %s, want it to contain Ω", got2)
	}
}

func TestParallelAssociativeKeepsUnit(t *testing.T) {
	for _, cells := range [][]string{
		{"a = 10 Ω", "b = 20 Ω", "c = 40 Ω", "(a // b) // c"},
		{"a = 10 Ω", "b = 20 Ω", "c = 40 Ω", "a // (b // c)"},
	} {
		e := New()
		var got string
		for _, c := range cells {
			got = e.EvalCell(c).Value.Display()
		}
		if !strings.HasSuffix(got, " Ω") {
			t.Errorf("%q = %s, want an Ω quantity", cells[3], got)
		}
		fields := strings.Fields(got)
		val, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			t.Fatalf("could not parse %q: %v", got, err)
		}
		want := 1 / (1.0/10 + 1.0/20 + 1.0/40)
		if math.Abs(val-want)/want > 1e-9 {
			t.Errorf("%q = %v, want %v", cells[3], val, want)
		}
	}
}

func TestImplicitMulMatchesExplicit(t *testing.T) {
	for _, bs := range []string{"0", "1", "2.5", "1000000"} {
		implicit := New()
		implicit.EvalCell("x = 7")
		explicit := New()
		explicit.EvalCell("x = 7")
		got := implicit.EvalCell(bs + " x").Value.Display()
		want := explicit.EvalCell(bs + " * x").Value.Display()
		if got != want {
			t.Errorf("%s x = %s, %s * x = %s", bs, got, bs, want)
		}
	}
}

func TestAddZeroOfSameUnitIsIdentity(t *testing.T) {
	e := New()
	before := e.EvalCell("q = 42 V").Value.Display()
	after := e.EvalCell("q + 0 V").Value.Display()
	if before != after {
		t.Errorf("q + 0 V = %s, want %s", after, before)
	}
}

func TestPanicRecoveryIsTotal(t *testing.T) {
	e := New()
	// The pipeline must never crash the process, even on pathological
	// input; EvalCell always returns, never panics.
	out := e.EvalCell("")
	if out.Value == nil {
		t.Fatal("eval of empty cell returned a nil value")
	}
}

func TestDiagnosticsCarryCellDefinesAndUses(t *testing.T) {
	e := New()
	out := e.EvalCell("bad = pow(1)")
	if len(out.Diagnostics) == 0 {
		t.Fatalf("expected at least one diagnostic from pow(1)")
	}
	d := out.Diagnostics[0]
	if len(d.Defines) != 1 || d.Defines[0] != "bad" {
		t.Errorf("Defines = %v, want [bad]", d.Defines)
	}
	if len(d.Uses) != 1 || d.Uses[0] != "pow" {
		t.Errorf("Uses = %v, want [pow]", d.Uses)
	}
}

func TestDisplayCanonicalizationOnlyAppliesToVOverOhm(t *testing.T) {
	e := New()
	// A quantity whose unit contains "Ω" but not "V/" must not fold.
	got := e.EvalCell("5 Ω").Value.Display()
	if got != "5 Ω" {
		t.Errorf("got %s", got)
	}
}
