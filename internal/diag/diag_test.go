package diag

import (
	"errors"
	"strings"
	"testing"

	"eqlint/internal/source"
)

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		EqCollectionNeedsStrategy: "GE001",
		EqComplexNeedsEquatable:   "GE002",
		EqElementNeedsEquatable:   "GE003",
		IOLoadFileError:           "IO1001",
		UnknownCode:               "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("code %d: want %s, got %s", code, want, got)
		}
	}
	for _, code := range RuleCodes() {
		parsed, ok := ParseCode(code.ID())
		if !ok || parsed != code {
			t.Fatalf("ParseCode(%s) = %v, %v", code.ID(), parsed, ok)
		}
	}
	if _, ok := ParseCode("GE999"); ok {
		t.Fatalf("unexpected parse of unknown id")
	}
}

func TestCollectionMessage(t *testing.T) {
	got := EqCollectionNeedsStrategy.Format("Items", "Order")
	want := "Collection field 'Items' in Equatable class 'Order' requires an equality attribute"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestFormatKeepsPlaceholdersInArgs(t *testing.T) {
	got := EqComplexNeedsEquatable.Format("Owner{1}", "Person{2}", "Order{0}")
	want := "Property 'Owner{1}' of type 'Person{2}' in Equatable class 'Order{0}' references a type that is not marked [Equatable]"
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if got := EqCollectionNeedsStrategy.Format("Items"); !strings.Contains(got, "class '{1}'") {
		t.Fatalf("missing argument should keep its placeholder, got %q", got)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	sp := source.Span{File: 0, Start: 10, End: 15}
	b.Add(NewFromCode(EqElementNeedsEquatable, sp, "Items", "Line", "Order"))
	b.Add(NewFromCode(EqCollectionNeedsStrategy, sp, "Items", "Order"))
	b.Add(NewFromCode(EqCollectionNeedsStrategy, sp, "Items", "Order"))
	b.Add(NewFromCode(EqComplexNeedsEquatable, source.Span{Start: 1, End: 2}, "Owner", "Person", "Order"))
	b.Dedup()
	b.Sort()
	if b.Len() != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", b.Len())
	}
	if b.Items()[0].Code != EqComplexNeedsEquatable {
		t.Fatalf("expected GE002 first, got %s", b.Items()[0].Code.ID())
	}
	if b.Items()[1].Code != EqCollectionNeedsStrategy || b.Items()[2].Code != EqElementNeedsEquatable {
		t.Fatalf("unexpected order %s %s", b.Items()[1].Code.ID(), b.Items()[2].Code.ID())
	}
	if !b.HasWarnings() || b.HasErrors() {
		t.Fatalf("unexpected severity summary")
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add(New(SevInfo, UnknownCode, source.Span{}, "a")) {
		t.Fatalf("first add rejected")
	}
	if b.Add(New(SevInfo, UnknownCode, source.Span{}, "b")) {
		t.Fatalf("second add accepted past limit")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{Start: 3, End: 4}
	ReportCode(r, EqCollectionNeedsStrategy, sp, "Tags", "Order").Emit()
	ReportCode(r, EqCollectionNeedsStrategy, sp, "Tags", "Order").Emit()
	b := ReportWarning(r, EqElementNeedsEquatable, sp, "x")
	b.Emit()
	b.Emit()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
}

func TestFixResolveThunk(t *testing.T) {
	f := &Fix{
		Title:          "Add ordered equality",
		EquivalenceKey: "ordered_equality",
		Thunk: func(FixBuildContext) (Fix, error) {
			return Fix{Title: "ignored", Edits: []TextEdit{{NewText: "x"}}}, nil
		},
	}
	got, err := f.Resolve(FixBuildContext{})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Title != "Add ordered equality" || got.EquivalenceKey != "ordered_equality" || len(got.Edits) != 1 || got.Thunk != nil {
		t.Fatalf("unexpected resolved fix: %+v", got)
	}

	boom := errors.New("boom")
	bad := &Fix{Title: "bad", Thunk: func(FixBuildContext) (Fix, error) { return Fix{}, boom }}
	if _, err := MaterializeFixes(FixBuildContext{}, []*Fix{f, bad}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}
