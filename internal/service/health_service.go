// FILE: internal/service/health_service.go
package service

import (
	"context"
	"time"

	"stock-ticker-be/internal/dto"
)

type IHealthService interface {
	Check(ctx context.Context) *dto.HealthResponse
}

type healthService struct {
	ping func(ctx context.Context) error
}

// NewHealthService reports the database as down when ping fails.
func NewHealthService(ping func(ctx context.Context) error) IHealthService {
	return &healthService{ping: ping}
}

func (s *healthService) Check(ctx context.Context) *dto.HealthResponse {
	res := &dto.HealthResponse{Status: "ok", Database: "up"}
	if s.ping == nil {
		res.Database = "unknown"
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.ping(ctx); err != nil {
		res.Status = "degraded"
		res.Database = "down"
	}
	return res
}
