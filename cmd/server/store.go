package main

import (
	"novapos/internal/config"
	"novapos/internal/infra"
	"novapos/internal/repository"

	"github.com/rs/zerolog/log"
)

// abrirStore opens the configured local store and returns a closer.
func abrirStore(cfg *config.Config) (repository.KVRepository, func(), error) {
	switch cfg.StoreDriver {
	case "redis":
		rdb, err := infra.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Msg("store: using redis")
		return repository.NewRedisKVRepository(rdb), func() { _ = rdb.Close() }, nil
	case "memoria":
		log.Warn().Msg("store: in-memory, data is lost on restart")
		return repository.NewMemoriaKVRepository(), func() {}, nil
	default:
		db, err := infra.NewDatabase(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("store: using sqlite")
		cerrar := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return repository.NewGormKVRepository(db), cerrar, nil
	}
}
