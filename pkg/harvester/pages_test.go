package harvester

import "testing"

func TestComputePagesExactMultiple(t *testing.T) {
	pages := ComputePages(100, 0, 50)
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d", len(pages))
	}
	if pages[0].Start != 0 || pages[0].Length != 50 {
		t.Errorf("Page 1 wrong: %+v", pages[0])
	}
	if pages[1].Start != 50 || pages[1].Length != 50 {
		t.Errorf("Page 2 wrong: %+v", pages[1])
	}
}

func TestComputePagesShortFinalPage(t *testing.T) {
	pages := ComputePages(120, 0, 50)
	if len(pages) != 3 {
		t.Fatalf("Expected 3 pages, got %d", len(pages))
	}
	last := pages[2]
	if last.Start != 100 || last.Length != 20 {
		t.Errorf("Final page wrong: %+v", last)
	}
	if last.FirstRecord() != 101 || last.LastRecord() != 120 {
		t.Errorf("Final page record range wrong: %d-%d", last.FirstRecord(), last.LastRecord())
	}
}

func TestComputePagesCapApplies(t *testing.T) {
	pages := ComputePages(1000000, 500000, 50)
	total := 0
	for _, page := range pages {
		total += page.Length
	}
	if total != 500000 {
		t.Errorf("Cap not honored: %d records planned", total)
	}
}

func TestComputePagesCapAboveCount(t *testing.T) {
	pages := ComputePages(75, 500000, 50)
	total := 0
	for _, page := range pages {
		total += page.Length
	}
	if total != 75 {
		t.Errorf("Expected 75 records planned, got %d", total)
	}
}

func TestComputePagesEmpty(t *testing.T) {
	if pages := ComputePages(0, 100, 50); len(pages) != 0 {
		t.Errorf("Zero count must plan no pages, got %d", len(pages))
	}
	if pages := ComputePages(100, 0, 0); len(pages) != 0 {
		t.Errorf("Zero batch size must plan no pages, got %d", len(pages))
	}
}

func TestComputePagesDisjointContiguous(t *testing.T) {
	pages := ComputePages(237, 0, 50)

	next := 0
	for i, page := range pages {
		if page.Number != i+1 {
			t.Errorf("Page %d numbered %d", i, page.Number)
		}
		if page.Start != next {
			t.Fatalf("Page %d starts at %d, expected %d (gap or overlap)", page.Number, page.Start, next)
		}
		if page.Length <= 0 {
			t.Fatalf("Page %d has non-positive length %d", page.Number, page.Length)
		}
		next = page.Start + page.Length
	}
	if next != 237 {
		t.Errorf("Pages cover [0,%d), expected [0,237)", next)
	}
}
