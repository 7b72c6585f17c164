package entity

import (
	"sort"
	"strings"
)

type SortKey string

const (
	SortByDate  SortKey = "date"
	SortByPrice SortKey = "price"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SizeSelector is the hierarchical (gender, type, size) triple used by
// the size filter. The matching rules depend on which fields are
// populated and are intentionally asymmetric (prefix vs substring vs
// suffix); they mirror the behavior users already rely on and must not
// be "fixed" without product confirmation.
type SizeSelector struct {
	Gender string `json:"gender,omitempty"`
	Type   string `json:"type,omitempty"`
	Size   string `json:"size,omitempty"`
}

func (s SizeSelector) IsEmpty() bool {
	return s.Gender == "" && s.Type == "" && s.Size == ""
}

// Matches reports whether a stored size label (e.g. "Man - Shirt - L")
// satisfies the selector. All comparisons are case-insensitive.
func (s SizeSelector) Matches(label string) bool {
	lbl := strings.ToLower(label)
	gender := strings.ToLower(strings.TrimSpace(s.Gender))
	typ := strings.ToLower(strings.TrimSpace(s.Type))
	size := strings.ToLower(strings.TrimSpace(s.Size))

	switch {
	case gender == "" && typ == "" && size == "":
		return true
	case gender != "" && typ != "" && size != "":
		return lbl == gender+" - "+typ+" - "+size
	case gender != "" && typ != "":
		return strings.HasPrefix(lbl, gender+" - "+typ)
	case gender != "" && size != "":
		return strings.HasPrefix(lbl, gender) && strings.HasSuffix(lbl, size)
	case gender != "":
		return strings.HasPrefix(lbl, gender)
	case typ != "" && size != "":
		return strings.Contains(lbl, typ) && strings.HasSuffix(lbl, size)
	case typ != "":
		return strings.Contains(lbl, typ)
	default:
		return strings.HasSuffix(lbl, size)
	}
}

// FilterSpec describes one feed request. Zero values mean "no
// restriction" for every field. MaxPriceMinor of 0 disables the price
// ceiling.
type FilterSpec struct {
	Query         string        `json:"query,omitempty"`
	Types         []string      `json:"types,omitempty"`
	Conditions    []string      `json:"conditions,omitempty"`
	Colors        []string      `json:"colors,omitempty"`
	MaxPriceMinor int64         `json:"max_price_minor,omitempty"`
	Size          SizeSelector  `json:"size,omitempty"`
	SortKey       SortKey       `json:"sort_key,omitempty"`
	SortDir       SortDirection `json:"sort_dir,omitempty"`
	FollowingOnly bool          `json:"following_only,omitempty"`
}

// Matches applies the content filters in their fixed order: text search
// over title and seller name, type set, condition set, color
// intersection, price ceiling, size selector. The following-only
// restriction needs the caller's following set and is applied by the
// feed engine, not here.
func (f FilterSpec) Matches(l *Listing) bool {
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(l.Title), q) &&
			!strings.Contains(strings.ToLower(l.SellerName), q) {
			return false
		}
	}
	if len(f.Types) > 0 && !containsString(f.Types, l.Category) {
		return false
	}
	if len(f.Conditions) > 0 && !containsString(f.Conditions, l.Condition) {
		return false
	}
	if len(f.Colors) > 0 && !intersects(f.Colors, l.Colors) {
		return false
	}
	if f.MaxPriceMinor > 0 && l.PriceMinor > f.MaxPriceMinor {
		return false
	}
	if !f.Size.IsEmpty() && !f.Size.Matches(l.SizeLabel) {
		return false
	}
	return true
}

// Sort orders the filtered result in place. Price sort and date sort
// are mutually exclusive per request; date desc is the default.
func (f FilterSpec) Sort(listings []Listing) {
	key := f.SortKey
	if key == "" {
		key = SortByDate
	}
	dir := f.SortDir
	if dir == "" {
		dir = SortDesc
	}

	sort.SliceStable(listings, func(i, j int) bool {
		a, b := &listings[i], &listings[j]
		if dir == SortDesc {
			a, b = b, a
		}
		switch key {
		case SortByPrice:
			return a.PriceMinor < b.PriceMinor
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if containsString(b, x) {
			return true
		}
	}
	return false
}

// ListingView is what the feed emits: the listing plus resolved image
// URLs for display.
type ListingView struct {
	Listing   `json:",inline"`
	ImageURLs []string `json:"image_urls,omitempty"`
}
