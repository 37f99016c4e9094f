package model

import (
	"fmt"
	"strings"
)

// Page is one page of extracted text. Number is 1-indexed.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document holds every page of one PDF, read once per processing run.
type Document struct {
	Path  string `json:"path"`
	Pages []Page `json:"pages"`
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Page returns the page with the given 1-indexed number.
func (d *Document) Page(n int) (Page, bool) {
	if n < 1 || n > len(d.Pages) {
		return Page{}, false
	}
	return d.Pages[n-1], true
}

// Slice returns pages from..to inclusive (1-indexed), clipped to the document.
func (d *Document) Slice(from, to int) []Page {
	if from < 1 {
		from = 1
	}
	if to > len(d.Pages) {
		to = len(d.Pages)
	}
	if from > to {
		return nil
	}
	return d.Pages[from-1 : to]
}

// PageDivider is the labeled separator placed between consecutive pages
// when page texts are concatenated.
func PageDivider(n int) string {
	return fmt.Sprintf("\n\n--- PÁGINA %d ---\n\n", n)
}

// JoinPages concatenates page texts with a PageDivider before every page
// except the first.
func JoinPages(pages []Page) string {
	var sb strings.Builder
	for i, p := range pages {
		if i > 0 {
			sb.WriteString(PageDivider(p.Number))
		}
		sb.WriteString(p.Text)
	}
	return sb.String()
}

// PageNumbers returns the numbers of the given pages in order.
func PageNumbers(pages []Page) []int {
	nums := make([]int, len(pages))
	for i, p := range pages {
		nums[i] = p.Number
	}
	return nums
}
