package layer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/philipparndt/rectdraw/internal/feature"
	"github.com/philipparndt/rectdraw/internal/logger"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

const redisWriteTimeout = 5 * time.Second

// Redis is a polygon layer kept in Redis. Layer metadata lives in the
// hash <key>:meta, features are GeoJSON strings in the list
// <key>:features and ids come from the counter <key>:seq.
type Redis struct {
	client *redis.Client
	key    string

	crs    crs.CRS
	fields feature.Schema

	mu       sync.RWMutex
	features []*feature.Feature
}

// splitRedisURL removes the key parameter, which go-redis would reject
func splitRedisURL(rawURL string) (string, string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid redis url: %w", err)
	}
	q := u.Query()
	key := q.Get("key")
	if key == "" {
		key = "rectdraw:rectangles"
	}
	q.Del("key")
	u.RawQuery = q.Encode()
	return u.String(), key, nil
}

// OpenRedis connects and loads the layer, initialising its metadata from
// opts when the key is new.
func OpenRedis(ctx context.Context, rawURL string, opts Options) (*Redis, error) {
	connURL, key, err := splitRedisURL(rawURL)
	if err != nil {
		return nil, err
	}
	ropts, err := redis.ParseURL(connURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if u, err := url.Parse(connURL); err == nil && u.Host == "" && opts.RedisAddr != "" {
		ropts.Addr = opts.RedisAddr
	}

	client := redis.NewClient(ropts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	l := &Redis{client: client, key: key, crs: opts.CRS, fields: opts.Fields}
	if err := l.load(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return l, nil
}

type redisMeta struct {
	CRS    string         `json:"crs"`
	Fields []geoJSONField `json:"fields"`
}

func (l *Redis) load(ctx context.Context) error {
	meta, err := l.client.HGetAll(ctx, l.key+":meta").Result()
	if err != nil {
		return fmt.Errorf("failed to read layer metadata: %w", err)
	}
	if len(meta) == 0 {
		fields, err := json.Marshal(encodeFields(l.fields))
		if err != nil {
			return err
		}
		if err := l.client.HSet(ctx, l.key+":meta", "crs", l.crs.Code, "fields", string(fields)).Err(); err != nil {
			return fmt.Errorf("failed to write layer metadata: %w", err)
		}
	} else {
		m, err := decodeRedisMeta(meta)
		if err != nil {
			return err
		}
		l.crs = crs.CRS{Code: m.CRS}
		l.fields = decodeFields(m.Fields)
	}

	items, err := l.client.LRange(ctx, l.key+":features", 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read features: %w", err)
	}
	features := make([]*feature.Feature, 0, len(items))
	for i, item := range items {
		f, err := decodeRedisFeature(item, l.fields)
		if errors.Is(err, errUnsupportedGeometry) {
			logger.L().Warn("skipping redis feature", "key", l.key, "index", i, "err", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("feature %d: %w", i, err)
		}
		features = append(features, f)
	}
	l.mu.Lock()
	l.features = features
	l.mu.Unlock()
	return nil
}

func decodeRedisMeta(meta map[string]string) (redisMeta, error) {
	m := redisMeta{CRS: meta["crs"]}
	if m.CRS == "" {
		return m, fmt.Errorf("layer metadata has no crs")
	}
	if raw := meta["fields"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &m.Fields); err != nil {
			return m, fmt.Errorf("invalid field metadata: %w", err)
		}
	}
	return m, nil
}

func encodeRedisFeature(f *feature.Feature) (string, error) {
	gf, err := encodeFeature(f)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(gf)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeRedisFeature(item string, schema feature.Schema) (*feature.Feature, error) {
	var gf geoJSONFeature
	if err := json.Unmarshal([]byte(item), &gf); err != nil {
		return nil, err
	}
	return decodeFeature(gf, schema)
}

func (l *Redis) Name() string                { return l.key }
func (l *Redis) Type() Type                  { return TypeVector }
func (l *Redis) GeometryType() geometry.Kind { return geometry.KindPolygon }
func (l *Redis) Fields() feature.Schema      { return l.fields }
func (l *Redis) CRS() crs.CRS                { return l.crs }

// Close closes the client
func (l *Redis) Close() error { return l.client.Close() }

// Features implements FeatureSource
func (l *Redis) Features() []*feature.Feature {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*feature.Feature(nil), l.features...)
}

// AddFeature implements Layer
func (l *Redis) AddFeature(f *feature.Feature) bool {
	if err := checkGeometry(f); err != nil {
		logger.L().Warn("redis layer rejected feature", "key", l.key, "err", err)
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisWriteTimeout)
	defer cancel()

	id, err := l.client.Incr(ctx, l.key+":seq").Result()
	if err != nil {
		logger.L().Error("redis id allocation failed", "key", l.key, "err", err)
		return false
	}
	f.ID = id

	item, err := encodeRedisFeature(f)
	if err != nil {
		logger.L().Error("failed to encode feature", "key", l.key, "err", err)
		return false
	}
	if err := l.client.RPush(ctx, l.key+":features", item).Err(); err != nil {
		logger.L().Error("redis append failed", "key", l.key, "err", err)
		return false
	}

	l.mu.Lock()
	l.features = append(l.features, f)
	l.mu.Unlock()
	return true
}
