package cartstore

import (
	"encoding/json"

	"github.com/arhambuilds/storefront-backend/internal/app/model"
)

// Persisted snapshot formats. The schema version lets the format evolve;
// snapshots with an unknown version are discarded rather than misread.

type linesSnapshot struct {
	SchemaVersion int              `json:"schema_version"`
	Lines         []model.CartLine `json:"lines"`
}

type couponSnapshot struct {
	SchemaVersion int          `json:"schema_version"`
	Coupon        model.Coupon `json:"coupon"`
}

func encodeLines(lines []model.CartLine) ([]byte, error) {
	return json.Marshal(linesSnapshot{
		SchemaVersion: model.CartSchemaVersion,
		Lines:         lines,
	})
}

// decodeLines returns ok=false for corrupt payloads or unknown schema
// versions; callers fall back to an empty cart.
func decodeLines(data []byte) ([]model.CartLine, bool) {
	var snap linesSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	if snap.SchemaVersion != model.CartSchemaVersion {
		return nil, false
	}
	return snap.Lines, true
}

func encodeCoupon(coupon *model.Coupon) ([]byte, error) {
	return json.Marshal(couponSnapshot{
		SchemaVersion: model.CartSchemaVersion,
		Coupon:        *coupon,
	})
}

func decodeCoupon(data []byte) (*model.Coupon, bool) {
	var snap couponSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	if snap.SchemaVersion != model.CartSchemaVersion || snap.Coupon.Code == "" {
		return nil, false
	}
	return &snap.Coupon, true
}
