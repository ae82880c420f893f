package abstractstore

import "pubmedscrape/lib/scrapers/pubmed"

// NewPageRecord maps one page's extracted segments to a PageRecord.
// Section indexes restate the segment's position in document order.
// Pure transformation, total over any input.
func NewPageRecord(url string, segments []pubmed.Segment) PageRecord {
	sections := make([]Section, len(segments))
	for i, segment := range segments {
		sections[i] = Section{
			Index:       i,
			BoldText:    segment.Label,
			ContentText: segment.Body,
		}
	}
	return PageRecord{
		SourceUrl: url,
		Sections:  sections,
	}
}
