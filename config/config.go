package config

import "time"

type Config struct {
	Web      Web
	Upstream Upstream
	Store    Store
	Feed     Feed
	Rate     Rate
	Cors     Cors
	Session  Session
}

type Web struct {
	Address         string        `conf:"default:0.0.0.0:3000"`
	ReadTimeout     time.Duration `conf:"default:5s"`
	WriteTimeout    time.Duration `conf:"default:10s"`
	IdleTimeout     time.Duration `conf:"default:120s"`
	ShutdownTimeout time.Duration `conf:"default:20s"`
}

// Upstream points at the shop API this storefront fronts.
type Upstream struct {
	URL     string        `conf:"default:http://localhost:8000/api/v1"`
	Timeout time.Duration `conf:"default:10s"`
}

type Store struct {
	Dir string `conf:"default:./data"`
}

type Feed struct {
	// PageLimit is passed to the upstream products endpoint.
	// Zero means the upstream default page size.
	PageLimit int `conf:"default:0"`
}

type Rate struct {
	Burst  int     `conf:"default:20"`
	Expiry int     `conf:"default:60"`
	RPS    float64 `conf:"default:10"`
}

type Cors struct {
	Origin string
}

type Session struct {
	Lifetime time.Duration `conf:"default:24h"`
}
