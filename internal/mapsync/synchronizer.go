// Package mapsync keeps a cached snapshot of the map's marker data and turns
// it into GeoJSON for the renderer. Change events trigger a full refetch.
package mapsync

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mapshare/internal/models"
	"mapshare/internal/realtime"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	KindLocation = "location"
	KindHotDeal  = "hot_deal"
)

// Tables lists the change feeds that invalidate the snapshot.
var Tables = []string{realtime.TableLocations, realtime.TableHotDeals}

type LocationLister interface {
	List(ctx context.Context) ([]models.Location, error)
}

type DealLister interface {
	List(ctx context.Context) ([]models.HotDeal, error)
}

type Config struct {
	ClusterRadius  int `json:"cluster_radius"`
	ClusterMaxZoom int `json:"cluster_max_zoom"`
}

type Synchronizer struct {
	locations LocationLister
	deals     DealLister
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.RWMutex
	snapshot    []models.Location
	dealCache   []models.HotDeal
	refreshedAt time.Time
}

func New(locations LocationLister, deals DealLister, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		locations: locations,
		deals:     deals,
		logger:    logger,
		now:       time.Now,
	}
}

// Refresh replaces the snapshot wholesale. On error the previous snapshot is kept.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	locs, err := s.locations.List(ctx)
	if err != nil {
		s.logger.Error("map refresh failed", "source", realtime.TableLocations, "error", err)
		return err
	}
	deals, err := s.deals.List(ctx)
	if err != nil {
		s.logger.Error("map refresh failed", "source", realtime.TableHotDeals, "error", err)
		return err
	}
	s.mu.Lock()
	s.snapshot = locs
	s.dealCache = deals
	s.refreshedAt = s.now().UTC()
	s.mu.Unlock()
	s.logger.Debug("map refreshed", "locations", len(locs), "hot_deals", len(deals))
	return nil
}

// RefreshedAt is zero until the first successful refresh.
func (s *Synchronizer) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}

// Features filters the cached snapshot without fetching. Deal markers follow
// the business toggle and are placed at the owner's shared location.
func (s *Synchronizer) Features(filter models.VisibilityFilter) *geojson.FeatureCollection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	fc := geojson.NewFeatureCollection()
	byUser := make(map[string]models.Location, len(s.snapshot))
	for _, loc := range s.snapshot {
		byUser[loc.UserID] = loc
		if !filter.Allows(loc.IsCompany) {
			continue
		}
		f := geojson.NewFeature(orb.Point{loc.Longitude, loc.Latitude})
		f.ID = loc.UserID
		f.Properties["kind"] = KindLocation
		f.Properties["user_id"] = loc.UserID
		f.Properties["is_company"] = loc.IsCompany
		fc.Append(f)
	}
	if !filter.ShowBusinesses {
		return fc
	}
	for _, deal := range s.dealCache {
		if !deal.IsActive(now) {
			continue
		}
		owner, ok := byUser[deal.UserID]
		if !ok {
			continue
		}
		f := geojson.NewFeature(orb.Point{owner.Longitude, owner.Latitude})
		f.ID = deal.ID
		f.Properties["kind"] = KindHotDeal
		f.Properties["deal_id"] = deal.ID
		f.Properties["user_id"] = deal.UserID
		f.Properties["title"] = deal.Title
		f.Properties["ends_at"] = deal.EndTime().UTC().Format(time.RFC3339)
		fc.Append(f)
	}
	return fc
}

// Run refreshes once, then once per received event until ctx is done or
// events is closed.
func (s *Synchronizer) Run(ctx context.Context, events <-chan realtime.ChangeEvent) {
	_ = s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.logger.Debug("map change received", "table", event.Table, "op", event.Op)
			_ = s.Refresh(ctx)
		}
	}
}
