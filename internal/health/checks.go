package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aaravmahajanofficial/grocery-store/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

// Pinger is satisfied by the payment gateway client.
type Pinger interface {
	Ping(ctx context.Context) error
}

var errGatewayNotConfigured = errors.New("payment gateway client is not initialized")

func NewHealthHandler(cfg *config.Config, gateway Pinger) (*health.Health, error) {
	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    cfg.OTel.ServiceName,
			Version: "1.0.0",
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks(cfg, gateway)...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

// checks lists the dependencies. Postgres and Redis are required; a Stripe
// outage only degrades the service since browsing and carts keep working.
func checks(cfg *config.Config, gateway Pinger) []health.Config {
	return []health.Config{
		{
			Name:    "database",
			Timeout: 3 * time.Second,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		},
		{
			Name:    "redis",
			Timeout: 2 * time.Second,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		},
		{
			Name:      "stripe",
			Timeout:   5 * time.Second,
			SkipOnErr: true,
			Check:     gatewayCheck(gateway),
		},
	}
}

func gatewayCheck(gateway Pinger) health.CheckFunc {
	return func(ctx context.Context) error {
		if gateway == nil {
			return errGatewayNotConfigured
		}

		if err := gateway.Ping(ctx); err != nil {
			return fmt.Errorf("failed to connect to stripe: %w", err)
		}

		return nil
	}
}
