package domain

// Event topics. Dispatch is synchronous and in process; see pkg/eventbus.
const (
	EventFirstProductScanned    = "first_product_scanned"
	EventStandardProductScanned = "standard_product_scanned"
	EventPointsToBeGranted      = "points_to_be_granted"
	EventUserPointsGranted      = "user_points_granted"
	EventUserRankChanged        = "user_rank_changed"
	EventReferralConverted      = "referral_converted"
)

// ScanEvent is the payload for first/standard scan topics.
type ScanEvent struct {
	UserID  uint
	Code    string
	SKU     string
	Context EventContext
}

// PointsGrantRequest is the payload for points_to_be_granted.
type PointsGrantRequest struct {
	UserID         uint
	BasePoints     int64
	Description    string
	TempMultiplier float64
}

// PointsGrantedEvent is the payload for user_points_granted.
type PointsGrantedEvent struct {
	UserID        uint
	PointsGranted int64
	NewBalance    int64
	Description   string
}

// RankChangedEvent is the payload for user_rank_changed.
type RankChangedEvent struct {
	UserID     uint
	OldRankKey string
	NewRankKey string
	Context    EventContext
}

// ReferralConvertedEvent is the payload for referral_converted.
type ReferralConvertedEvent struct {
	ReferrerUserID uint
	ReferredUserID uint
	Code           string
}
