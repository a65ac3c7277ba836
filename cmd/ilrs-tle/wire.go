package main

import (
	"context"
	"fmt"

	"github.com/dronir/ILRS-TLE/pkg/catalog"
	"github.com/dronir/ILRS-TLE/pkg/client"
	"github.com/dronir/ILRS-TLE/pkg/config"
	"github.com/dronir/ILRS-TLE/pkg/query"
	"github.com/dronir/ILRS-TLE/pkg/retriever"
	"github.com/dronir/ILRS-TLE/pkg/session"
	"github.com/dronir/ILRS-TLE/pkg/sink"
	"github.com/redis/go-redis/v9"
)

type app struct {
	retriever *retriever.Retriever
	redis     *redis.Client
}

// Close releases the Redis connection, if any.
func (a *app) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func wireApp(ctx context.Context, cfg *config.Config) (*app, error) {
	userAgent := cfg.HTTP.UserAgent
	if userAgent == "" {
		userAgent = "ILRS-TLE/" + version
	}

	sessCfg := session.DefaultConfig(session.Credentials{
		Identity: cfg.Username,
		Password: cfg.Password,
	}, userAgent)
	sessCfg.LoginURL = cfg.LoginURL()
	sessCfg.FailureMarker = cfg.SpaceTrack.FailureMarker
	sessCfg.Freshness = cfg.SpaceTrack.SessionLifetime
	sessCfg.Timeout = cfg.HTTP.Timeout

	sess, err := session.New(sessCfg)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	a := &app{}
	out := sink.Sink(sink.NewFileSink(cfg.OutputDir))
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		out = sink.Multi(out, sink.NewRedisSink(a.redis, cfg.Redis.KeyPrefix, cfg.Redis.TTL))
	}

	catalogs := map[string]catalog.Source{}
	if cfg.Catalog.Enabled {
		publicClient, err := client.New(client.Config{
			UserAgent: userAgent,
			Timeout:   cfg.HTTP.Timeout,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("create catalog client: %w", err)
		}
		catalogs[cfg.Catalog.ListName] = catalog.NewILRSSource(publicClient, cfg.Catalog.URL)
	}

	a.retriever, err = retriever.New(retriever.Config{
		Session:  sess,
		Builder:  query.NewBuilder(cfg.QueryURL()),
		Sink:     out,
		Format:   cfg.Format,
		Catalogs: catalogs,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create retriever: %w", err)
	}

	for _, l := range cfg.Lists {
		a.retriever.SetList(l.Name, l.Numbers)
	}

	return a, nil
}
