package domain

import "time"

// EventContext is the immutable point-in-time snapshot handed to every event
// listener and to the rules engine. Built fresh per event, never persisted.
type EventContext struct {
	UserSnapshot    UserSnapshot     `json:"user_snapshot"`
	ProductSnapshot *ProductSnapshot `json:"product_snapshot,omitempty"`
	EventMeta       EventMeta        `json:"event_context"`
}

type UserSnapshot struct {
	Identity   IdentitySnapshot   `json:"identity"`
	Economy    EconomySnapshot    `json:"economy"`
	Status     StatusSnapshot     `json:"status"`
	Engagement EngagementSnapshot `json:"engagement"`
}

type IdentitySnapshot struct {
	UserID   uint   `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type EconomySnapshot struct {
	PointsBalance  int64 `json:"points_balance"`
	LifetimePoints int64 `json:"lifetime_points"`
}

type StatusSnapshot struct {
	RankKey  string `json:"rank_key"`
	RankName string `json:"rank_name"`
}

type EngagementSnapshot struct {
	TotalScans int64 `json:"total_scans"`
}

type ProductSnapshot struct {
	ProductID   uint   `json:"product_id"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	Category    string `json:"category"`
}

type EventMeta struct {
	Time      time.Time `json:"time"`
	Location  string    `json:"location,omitempty"`
	Device    string    `json:"device,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

// ToMap flattens the snapshot into the nested map shape the rules engine
// walks with dot paths.
func (e EventContext) ToMap() map[string]any {
	out := map[string]any{
		"user_snapshot": map[string]any{
			"identity": map[string]any{
				"user_id":   e.UserSnapshot.Identity.UserID,
				"full_name": e.UserSnapshot.Identity.FullName,
				"email":     e.UserSnapshot.Identity.Email,
			},
			"economy": map[string]any{
				"points_balance":  e.UserSnapshot.Economy.PointsBalance,
				"lifetime_points": e.UserSnapshot.Economy.LifetimePoints,
			},
			"status": map[string]any{
				"rank_key":  e.UserSnapshot.Status.RankKey,
				"rank_name": e.UserSnapshot.Status.RankName,
			},
			"engagement": map[string]any{
				"total_scans": e.UserSnapshot.Engagement.TotalScans,
			},
		},
		"event_context": map[string]any{
			"time":       e.EventMeta.Time.Format(time.RFC3339),
			"location":   e.EventMeta.Location,
			"device":     e.EventMeta.Device,
			"ip_address": e.EventMeta.IPAddress,
			"user_agent": e.EventMeta.UserAgent,
		},
	}

	if e.ProductSnapshot != nil {
		out["product_snapshot"] = map[string]any{
			"product_id":   e.ProductSnapshot.ProductID,
			"sku":          e.ProductSnapshot.SKU,
			"product_name": e.ProductSnapshot.ProductName,
			"category":     e.ProductSnapshot.Category,
		}
	}

	return out
}
