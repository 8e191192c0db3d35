// Package catalog holds the compiled-in storefront data: the sellable
// template list seeded into the database at boot, and the coupon table shared
// by every checkout path.
package catalog

import (
	"strings"

	"github.com/arhambuilds/storefront-backend/internal/app/model"
)

// coupons maps normalized codes to discount percentages. One table backs both
// the cart checkout and the single-product checkout.
var coupons = map[string]int{
	"MOMENT10":     10,
	"ARHAMBUILD10": 10,
	"TRYARHAM":     5,
}

// ResolveCoupon normalizes code (trim, uppercase) and looks it up. The second
// return is false for unknown codes; that is the only failure mode.
func ResolveCoupon(code string) (int, bool) {
	percent, ok := coupons[strings.ToUpper(strings.TrimSpace(code))]
	return percent, ok
}

// CouponCodes lists the available codes for the storefront's coupon chips.
func CouponCodes() []string {
	codes := make([]string, 0, len(coupons))
	for code := range coupons {
		codes = append(codes, code)
	}
	return codes
}

func intPtr(v int64) *int64 { return &v }

// Products is the immutable catalog. Prices are whole INR.
func Products() []model.Product {
	return []model.Product{
		{
			ID:            "p1",
			Slug:          "happy-birthday-sahiba-v2",
			Title:         "Happy Birthday Sahiba",
			Description:   "A heartfelt birthday website created to express love, emotions, and unspoken feelings through soft visuals, gentle animations, and a warm, personal journey.",
			Category:      "Birthday",
			CurrentPrice:  281,
			OriginalPrice: intPtr(499),
			ThumbnailURL:  "https://cdn.arhambuilds.com/thumbs/happy-birthday-sahiba.png",
			VideoURL:      "https://cdn.arhambuilds.com/previews/happy-birthday-sahiba.mp4",
			DemoURL:       "https://hbd-sahiba-jii.vercel.app/",
			ArchiveKey:    "templates/happy-birthday-sahiba-v2.zip",
			Badge:         model.BadgeHotSell,
		},
		{
			ID:            "p2",
			Slug:          "happy-birthday-v1",
			Title:         "Happy Birthday 1.0",
			Description:   "A simple birthday-themed website designed to create a calm and lovely experience, where gentle visuals and smooth transitions come together.",
			Category:      "Birthday",
			CurrentPrice:  28,
			OriginalPrice: intPtr(199),
			ThumbnailURL:  "https://cdn.arhambuilds.com/thumbs/happy-birthday-v1.png",
			VideoURL:      "https://cdn.arhambuilds.com/previews/happy-birthday-v1.mp4",
			DemoURL:       "https://birthday-v3-navy.vercel.app/",
			ArchiveKey:    "templates/happy-birthday-v1.zip",
			Badge:         model.BadgeLatest,
		},
		{
			ID:            "p3",
			Slug:          "kahani-suno-lyrics",
			Title:         "Kahani Suno Lyrics",
			Description:   "A music lyrical website that gently turns music into a personal story, with soft visuals and a calm, romantic mood.",
			Category:      "Free",
			CurrentPrice:  0,
			OriginalPrice: intPtr(49),
			ThumbnailURL:  "https://cdn.arhambuilds.com/thumbs/kahani-suno-lyrics.png",
			VideoURL:      "https://cdn.arhambuilds.com/previews/kahani-suno-lyrics.mp4",
			DemoURL:       "https://kahanisuno-lyrics-site.vercel.app/",
			ArchiveKey:    "templates/kahani-suno-lyrics.zip",
			Badge:         model.BadgeTrending,
		},
		{
			ID:            "p4",
			Slug:          "new-year-2026",
			Title:         "New Year 2026",
			Description:   "An interactive New Year website crafted to deliver a personal message and a memorable start to the year.",
			Category:      "Special",
			CurrentPrice:  149,
			OriginalPrice: intPtr(349),
			ThumbnailURL:  "https://cdn.arhambuilds.com/thumbs/new-year-2026.png",
			VideoURL:      "https://cdn.arhambuilds.com/previews/new-year-2026.mp4",
			DemoURL:       "https://happy-new-year-madam-jii.vercel.app/",
			ArchiveKey:    "templates/new-year-2026.zip",
			Badge:         model.BadgeTrending,
		},
	}
}
