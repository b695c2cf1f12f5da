package services

import (
	"context"
	"fmt"
	"sort"

	"mapshare/internal/auth"
	"mapshare/internal/models"
	"mapshare/internal/realtime"
	"mapshare/internal/validator"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const (
	defaultNearbyRadius = 1000.0
	maxNearbyRadius     = 50000.0
)

type LocationStore interface {
	Upsert(ctx context.Context, loc models.Location) (models.Location, error)
	Delete(ctx context.Context, userID string) (int64, error)
	List(ctx context.Context) ([]models.Location, error)
}

type NearbyLocation struct {
	models.Location
	DistanceMeters float64 `json:"distance_meters"`
}

type LocationService struct {
	locations LocationStore
	feed      realtime.Publisher
}

func NewLocationService(locations LocationStore, feed realtime.Publisher) *LocationService {
	return &LocationService{locations: locations, feed: feed}
}

// Share overwrites the caller's single location row.
func (s *LocationService) Share(ctx context.Context, session auth.Session, latitude, longitude float64) (models.Location, error) {
	if err := validator.ValidateCoordinates(latitude, longitude); err != nil {
		return models.Location{}, err
	}
	loc, err := s.locations.Upsert(ctx, models.Location{
		UserID:    session.UserID,
		Latitude:  latitude,
		Longitude: longitude,
		IsCompany: session.IsCompany,
	})
	if err != nil {
		return models.Location{}, fmt.Errorf("upsert location: %w", err)
	}
	s.feed.Publish(realtime.ChangeEvent{Table: realtime.TableLocations, Op: realtime.OpUpdate})
	return loc, nil
}

// Remove is a no-op when the user has no row.
func (s *LocationService) Remove(ctx context.Context, session auth.Session) error {
	deleted, err := s.locations.Delete(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if deleted > 0 {
		s.feed.Publish(realtime.ChangeEvent{Table: realtime.TableLocations, Op: realtime.OpDelete})
	}
	return nil
}

func (s *LocationService) List(ctx context.Context) ([]models.Location, error) {
	return s.locations.List(ctx)
}

func (s *LocationService) Nearby(ctx context.Context, latitude, longitude, radius float64, filter models.VisibilityFilter) ([]NearbyLocation, error) {
	if err := validator.ValidateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}
	if radius <= 0 {
		radius = defaultNearbyRadius
	}
	if radius > maxNearbyRadius {
		radius = maxNearbyRadius
	}
	rows, err := s.locations.List(ctx)
	if err != nil {
		return nil, err
	}
	origin := orb.Point{longitude, latitude}
	out := make([]NearbyLocation, 0, len(rows))
	for _, loc := range rows {
		if !filter.Allows(loc.IsCompany) {
			continue
		}
		d := geo.Distance(origin, orb.Point{loc.Longitude, loc.Latitude})
		if d > radius {
			continue
		}
		out = append(out, NearbyLocation{Location: loc, DistanceMeters: d})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DistanceMeters < out[j].DistanceMeters
	})
	return out, nil
}
