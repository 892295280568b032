package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const prefijoRedis = "novapos:"

type redisKVRepo struct{ rdb *redis.Client }

// NewRedisKVRepository stores every key as a plain string under the
// "novapos:" prefix.
func NewRedisKVRepository(rdb *redis.Client) KVRepository { return &redisKVRepo{rdb: rdb} }

func (r *redisKVRepo) Cargar(ctx context.Context, clave string) ([]byte, bool, error) {
	b, err := r.rdb.Get(ctx, prefijoRedis+clave).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *redisKVRepo) GuardarLote(ctx context.Context, lote Lote) error {
	if len(lote) == 0 {
		return nil
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for clave, valor := range lote {
			pipe.Set(ctx, prefijoRedis+clave, valor, 0)
		}
		return nil
	})
	return err
}

func (r *redisKVRepo) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
