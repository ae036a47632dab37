package persistence

import (
	"testing"

	"github.com/deskline/support-portal/internal/config"
)

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RedisConfig
		wantAddr string
		wantPass string
		wantDB   int
		wantErr  bool
	}{
		{"host port", config.RedisConfig{Addr: "cache:6379", Password: "s3cret", DB: 2}, "cache:6379", "s3cret", 2, false},
		{"url", config.RedisConfig{Addr: "redis://:fromurl@cache:6380/4"}, "cache:6380", "fromurl", 4, false},
		{"explicit settings win", config.RedisConfig{Addr: "redis://:fromurl@cache:6380/4", Password: "env", DB: 1}, "cache:6380", "env", 1, false},
		{"bad url", config.RedisConfig{Addr: "redis://cache:notaport/x"}, "", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := RedisOptions(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RedisOptions err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if opts.Addr != tt.wantAddr || opts.Password != tt.wantPass || opts.DB != tt.wantDB {
				t.Errorf("RedisOptions = addr %q pass %q db %d, want %q %q %d", opts.Addr, opts.Password, opts.DB, tt.wantAddr, tt.wantPass, tt.wantDB)
			}
			if opts.DialTimeout != redisDialTimeout {
				t.Errorf("DialTimeout = %v", opts.DialTimeout)
			}
		})
	}
}

func TestNilRedisPing(t *testing.T) {
	var r *Redis
	if err := r.Ping(t.Context()); err == nil {
		t.Error("Ping on nil client succeeded")
	}
	r.Close()
}
