package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/Temutjin2k/kekelink/internal/domain/models"
	"github.com/redis/go-redis/v9"
)

const (
	defaultGeoKey  = "kekes:live"
	defaultInfoKey = "kekes:info"
)

var errInvalidMember = errors.New("invalid geo member")

// LocationMirror keeps a copy of live driver positions in Redis so that
// dashboards and other processes can run radius queries without touching
// the hub. Positions live in a GEO set, details in a hash.
type LocationMirror struct {
	client  redis.Cmdable
	geoKey  string
	infoKey string
}

func NewLocationMirror(client redis.Cmdable, prefix string) *LocationMirror {
	m := &LocationMirror{client: client, geoKey: defaultGeoKey, infoKey: defaultInfoKey}
	if prefix != "" {
		m.geoKey = prefix + ":" + defaultGeoKey
		m.infoKey = prefix + ":" + defaultInfoKey
	}
	return m
}

// UpsertDriver writes position and details in one transaction.
func (m *LocationMirror) UpsertDriver(ctx context.Context, loc models.DriverLocation) error {
	info, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshal driver %d: %w", loc.DriverID, err)
	}
	member := strconv.FormatInt(loc.DriverID, 10)

	_, err = m.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.GeoAdd(ctx, m.geoKey, &redis.GeoLocation{Name: member, Longitude: loc.Lng, Latitude: loc.Lat})
		p.HSet(ctx, m.infoKey, member, info)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis upsert driver %d: %w", loc.DriverID, err)
	}
	return nil
}

func (m *LocationMirror) RemoveDriver(ctx context.Context, driverID int64) error {
	member := strconv.FormatInt(driverID, 10)

	_, err := m.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRem(ctx, m.geoKey, member)
		p.HDel(ctx, m.infoKey, member)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis remove driver %d: %w", driverID, err)
	}
	return nil
}

// Nearby returns up to limit drivers within radiusKm of p, closest first.
func (m *LocationMirror) Nearby(ctx context.Context, p models.Point, radiusKm float64, limit int) ([]models.NearbyDriver, error) {
	results, err := m.client.GeoRadius(ctx, m.geoKey, p.Lng, p.Lat, &redis.GeoRadiusQuery{
		Radius:   radiusKm,
		Unit:     "km",
		WithDist: true,
		Sort:     "ASC",
		Count:    limit,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis georadius: %w", err)
	}
	if len(results) == 0 {
		return []models.NearbyDriver{}, nil
	}

	members := make([]string, len(results))
	for i, r := range results {
		members[i] = r.Name
	}
	infos, err := m.client.HMGet(ctx, m.infoKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hmget: %w", err)
	}

	out := make([]models.NearbyDriver, 0, len(results))
	for i, r := range results {
		id, err := strconv.ParseInt(r.Name, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", errInvalidMember, r.Name)
		}

		nd := models.NearbyDriver{
			DriverLocation: models.DriverLocation{DriverID: id},
			DistanceKm:     r.Dist,
		}
		// Details can lag behind the GEO set; fall back to id only.
		if raw, ok := infos[i].(string); ok {
			_ = json.Unmarshal([]byte(raw), &nd.DriverLocation)
		}
		out = append(out, nd)
	}
	return out, nil
}
