// Package routeview maps storefront URL paths to client views. The client
// shell asks the server which view a deep link lands on so direct visits and
// shared links render the same screen as in-app navigation.
package routeview

import (
	"regexp"
	"strings"
)

const (
	ViewHome            = "home"
	ViewStore           = "store"
	ViewProductDetail   = "product-detail"
	ViewDeliveryProcess = "delivery-process"
	ViewContactPage     = "contact-page"
	ViewPrivacyPolicy   = "privacy-policy"
	ViewTermsConditions = "terms-conditions"
	ViewVerification    = "verification"
	ViewPulse           = "pulse"
	ViewProjects        = "projects"
	ViewMasterclass     = "masterclass"
)

// View is a resolved route: the view to render, the product slug when the
// view is a product detail, and the landing section to scroll to when the
// path is a section anchor.
type View struct {
	View     string `json:"view"`
	Slug     string `json:"slug,omitempty"`
	ScrollTo string `json:"scroll_to,omitempty"`
}

var staticRoutes = map[string]string{
	"delivery-process": ViewDeliveryProcess,
	"contact":          ViewContactPage,
	"templates":        ViewStore,
	"store":            ViewStore,
	"privacy":          ViewPrivacyPolicy,
	"terms":            ViewTermsConditions,
	"verify":           ViewVerification,
	"profile":          ViewPulse,
	"projects":         ViewProjects,
	"masterclass":      ViewMasterclass,
}

// landingSections are anchors on the home view, not views of their own.
var landingSections = map[string]bool{
	"about": true,
	"faq":   true,
}

var productPath = regexp.MustCompile(`/product/([^/?#]+)`)

// Resolver resolves paths against the catalog. slugExists reports whether a
// product slug is sellable; unknown slugs land on the store listing rather
// than a dead detail page.
type Resolver struct {
	slugExists func(slug string) bool
}

// NewResolver creates a new resolver
func NewResolver(slugExists func(slug string) bool) *Resolver {
	return &Resolver{slugExists: slugExists}
}

func (r *Resolver) Resolve(path string) View {
	clean := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(clean, '?'); i >= 0 {
		clean = clean[:i]
	}
	if clean == "" {
		return View{View: ViewHome}
	}

	if view, ok := staticRoutes[clean]; ok {
		return View{View: view}
	}

	if match := productPath.FindStringSubmatch(path); match != nil {
		slug := match[1]
		if r.slugExists != nil && r.slugExists(slug) {
			return View{View: ViewProductDetail, Slug: slug}
		}
		return View{View: ViewStore}
	}

	if landingSections[clean] {
		return View{View: ViewHome, ScrollTo: clean}
	}

	return View{View: ViewHome}
}
