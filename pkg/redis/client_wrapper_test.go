package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestPingClient(t *testing.T) {
	mr := miniredis.RunT(t)
	live := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer live.Close()
	require.NoError(t, pingClient(context.Background(), live))

	dead := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:0"})
	defer dead.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.Error(t, pingClient(ctx, dead))
}
