package inline

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	numericNameRegexp = regexp.MustCompile(`^(\d+)(\.[A-Za-z0-9]+)?$`)
	cssUrlRegexp      = regexp.MustCompile(`url\(\s*['"]?([^'")\s]+)['"]?\s*\)`)
)

// ResourceId extracts the numeric resource id from a reference. Accepted
// forms are bare digits and paths whose last element is digits with an
// optional extension ("123", "../res/123.png"). Query strings and fragments
// are ignored.
func ResourceId(ref string) (int64, bool) {
	ref = strings.TrimSpace(ref)
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" || strings.HasPrefix(ref, "data:") {
		return 0, false
	}

	m := numericNameRegexp.FindStringSubmatch(path.Base(ref))
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// StylesheetRef returns the first stylesheet link of the page whose href
// resolves to a resource id. Links in head are preferred over links in body.
// A page without such a link simply has no stylesheet.
func StylesheetRef(doc *goquery.Document) (int64, bool) {
	for _, sel := range []string{`head link[rel~="stylesheet"]`, `link[rel~="stylesheet"]`} {
		var (
			id    int64
			found bool
		)
		doc.Find(sel).EachWithBreak(func(i int, s *goquery.Selection) bool {
			id, found = ResourceId(s.AttrOr("href", ""))
			return !found
		})
		if found {
			return id, true
		}
	}
	return 0, false
}

// ImageRefs lists the ids referenced by img elements in document order,
// without duplicates.
func ImageRefs(doc *goquery.Document) []int64 {
	var ids []int64
	seen := make(map[int64]bool)
	doc.Find("img[src]").Each(func(i int, s *goquery.Selection) {
		if id, ok := ResourceId(s.AttrOr("src", "")); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	})
	return ids
}

// FontRefs lists the numeric url() references of a stylesheet.
func FontRefs(css string) []int64 {
	var ids []int64
	seen := make(map[int64]bool)
	for _, m := range cssUrlRegexp.FindAllStringSubmatch(css, -1) {
		if id, ok := ResourceId(m[1]); ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
