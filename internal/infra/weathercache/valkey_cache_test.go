package weathercache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go/mock"
	"go.uber.org/mock/gomock"
)

func TestValkeyCacheGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	cache := NewValkeyCache(client, "wx")
	ctx := context.Background()

	client.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "wx:current:metric:oslo")).
		Return(mock.Result(mock.ValkeyString(`{"name":"Oslo"}`)))

	payload, ok, err := cache.Get(ctx, "current:metric:oslo")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"name":"Oslo"}`, string(payload))
}

func TestValkeyCacheMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	cache := NewValkeyCache(client, "")

	client.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "weather:geo:atlantis")).
		Return(mock.Result(mock.ValkeyNil()))

	payload, ok, err := cache.Get(context.Background(), "geo:atlantis")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, payload)
}

func TestValkeyCacheGetError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)
	cache := NewValkeyCache(client, "wx")
	boom := errors.New("connection refused")

	client.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "wx:k")).
		Return(mock.ErrorResult(boom))

	_, ok, err := cache.Get(context.Background(), "k")
	require.ErrorIs(t, err, boom)
	require.False(t, ok)
}

func TestValkeyCacheSet(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want []string
	}{
		{name: "with ttl", ttl: 5 * time.Minute, want: []string{"SET", "wx:k", "v", "EX", "300"}},
		{name: "sub-second ttl rounds up", ttl: 10 * time.Millisecond, want: []string{"SET", "wx:k", "v", "EX", "1"}},
		{name: "no ttl", ttl: 0, want: []string{"SET", "wx:k", "v"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock.NewClient(ctrl)
			cache := NewValkeyCache(client, "wx")

			client.EXPECT().
				Do(gomock.Any(), mock.Match(tt.want...)).
				Return(mock.Result(mock.ValkeyString("OK")))

			require.NoError(t, cache.Set(context.Background(), "k", []byte("v"), tt.ttl))
		})
	}
}
