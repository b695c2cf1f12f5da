package mapsync

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb/geojson"
)

const (
	ActionNone                = "none"
	ActionOpenHotDeal         = "open_hot_deal"
	ActionViewBusinessProfile = "view_business_profile"
	ActionOpenPaidMessage     = "open_paid_message"
	ActionZoomToCluster       = "zoom_to_cluster"
)

var ErrInvalidFeature = errors.New("invalid feature properties")

type Action struct {
	Type        string `json:"type"`
	DealID      string `json:"deal_id,omitempty"`
	Path        string `json:"path,omitempty"`
	RecipientID string `json:"recipient_id,omitempty"`
	ClusterID   int64  `json:"cluster_id,omitempty"`
}

// Route maps the properties of a clicked feature to the UI action for viewerID.
func Route(props geojson.Properties, viewerID string) (Action, error) {
	if props == nil {
		return Action{}, ErrInvalidFeature
	}
	if boolProp(props, "cluster") {
		id, ok := intProp(props, "cluster_id")
		if !ok {
			return Action{}, fmt.Errorf("%w: cluster without cluster_id", ErrInvalidFeature)
		}
		return Action{Type: ActionZoomToCluster, ClusterID: id}, nil
	}
	switch stringProp(props, "kind") {
	case KindHotDeal:
		dealID := stringProp(props, "deal_id")
		if dealID == "" {
			return Action{}, fmt.Errorf("%w: hot deal without deal_id", ErrInvalidFeature)
		}
		return Action{Type: ActionOpenHotDeal, DealID: dealID}, nil
	case KindLocation:
		userID := stringProp(props, "user_id")
		if userID == "" {
			return Action{}, fmt.Errorf("%w: location without user_id", ErrInvalidFeature)
		}
		if userID == viewerID {
			return Action{Type: ActionNone}, nil
		}
		if boolProp(props, "is_company") {
			return Action{Type: ActionViewBusinessProfile, Path: "/business/" + userID}, nil
		}
		return Action{Type: ActionOpenPaidMessage, RecipientID: userID}, nil
	default:
		return Action{}, fmt.Errorf("%w: unknown kind", ErrInvalidFeature)
	}
}

func stringProp(props geojson.Properties, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

// boolProp also accepts the string and numeric forms renderers emit.
func boolProp(props geojson.Properties, key string) bool {
	switch v := props[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

func intProp(props geojson.Properties, key string) (int64, bool) {
	switch v := props[key].(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}
