package harvester

// Page is one contiguous slice of a search result set. Start is a zero-based
// offset; Number is the 1-based page index used in file names and reports.
type Page struct {
	Number int
	Start  int
	Length int
}

// FirstRecord returns the 1-based position of the page's first record
func (p Page) FirstRecord() int {
	return p.Start + 1
}

// LastRecord returns the 1-based position of the page's last record
func (p Page) LastRecord() int {
	return p.Start + p.Length
}

// ComputePages splits a result set into disjoint contiguous pages of at most
// batchSize records, covering [0, min(count, cap)). A non-positive cap means
// no cap.
func ComputePages(count, cap, batchSize int) []Page {
	target := count
	if cap > 0 && cap < target {
		target = cap
	}
	if target <= 0 || batchSize <= 0 {
		return nil
	}

	pages := make([]Page, 0, (target+batchSize-1)/batchSize)
	for start := 0; start < target; start += batchSize {
		length := batchSize
		if start+length > target {
			length = target - start
		}
		pages = append(pages, Page{
			Number: len(pages) + 1,
			Start:  start,
			Length: length,
		})
	}
	return pages
}
